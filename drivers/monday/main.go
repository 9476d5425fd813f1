package main

import (
	tapmonday "github.com/datazip-inc/tap-monday"
	driver "github.com/datazip-inc/tap-monday/drivers/monday/internal"
)

func main() {
	driver := &driver.Monday{}
	tapmonday.RegisterDriver(driver)
}
