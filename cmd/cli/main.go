package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/filedo/internal/admin"
)

func main() {

	app := admin.New(os.Getenv)

	if err := app.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

}
