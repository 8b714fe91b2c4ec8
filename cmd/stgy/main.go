/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"context"
	"os"

	"github.com/ssargent/stgyboard/cmd/stgy/cmd"
	"github.com/ssargent/stgyboard/pkg/di"
)

func main() {
	cmd.SetContainer(di.NewContainer())

	if err := cmd.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
