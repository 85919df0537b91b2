// Package main is the entry point for the concur-accruals service.
package main

import (
	"github.com/donaldgifford/concur-accruals/cmd/concur-accruals/cmd"
)

func main() {
	cmd.Execute()
}
