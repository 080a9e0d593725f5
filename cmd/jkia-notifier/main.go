package main

import (
	"github.com/Copubah/jkia-aircraft-notifier/internal/cli"
)

func main() {
	cli.Execute()
}
