package gormdb

var DriverDDL = driverDDL
