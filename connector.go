package tapmonday

import (
	"os"

	"github.com/datazip-inc/tap-monday/drivers/abstract"
	"github.com/datazip-inc/tap-monday/protocol"
	"github.com/datazip-inc/tap-monday/utils/logger"
	"github.com/datazip-inc/tap-monday/utils/safego"
)

func RegisterDriver(driver abstract.DriverInterface) {
	defer safego.Recovery(true)

	// Execute the root command
	err := protocol.CreateRootCommand(true, driver).Execute()
	if err != nil {
		logger.Fatal(err)
	}

	os.Exit(0)
}
