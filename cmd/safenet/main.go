package main

import (
	"os"

	_ "github.com/jheddings/safenet/internal/cli/ip"
	_ "github.com/jheddings/safenet/internal/cli/run"
	_ "github.com/jheddings/safenet/internal/cli/version"

	"github.com/jheddings/safenet/internal/cli/app"
)

func main() {
	os.Exit(app.Main())
}
