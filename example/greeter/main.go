// Command greeter is a minimal tool hosting its own bringup and test through
// the normalize flags.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joakimbits/normalize"
)

const doc = `Greet from the command line.

Dependencies:
$ true  # nothing to install

Examples:
$ greeter World
Hello, World!
$ greeter
Hello, there!
`

func main() {
	flags := normalize.Flags{}
	flags.Register(flag.CommandLine)
	flag.Parse()

	cfg, err := normalize.NewConfig(os.Args)
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.LoadFile(normalize.ConfigFile); err != nil {
		log.Fatal(err)
	}
	if handled, code := flags.Dispatch(context.Background(), cfg, doc,
		os.Stdout, os.Stderr, nil,
	); handled {
		os.Exit(code)
	}

	name := "there"
	if flag.NArg() > 0 {
		name = flag.Arg(0)
	}
	fmt.Printf("Hello, %s!\n", name)
}
