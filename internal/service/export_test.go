package service

import "time"

func (s *AuthService) SetClock(now func() time.Time) { s.now = now }

func (tb *TokenBucket) SetClock(now func() time.Time) { tb.now = now }

func (tb *TokenBucket) Sweep() { tb.sweep() }

func (tb *TokenBucket) Size() int { return tb.size() }
