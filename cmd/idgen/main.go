package main

import (
	"fmt"
	"os"

	"katydid-common-idgen/internal/cmd"
)

// @title idgen API
// @version 1.0
// @description Snowflake ID assignment service
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := cmd.NewRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "idgen:", err)
		os.Exit(1)
	}
}
