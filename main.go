// cinepool はLetterboxdの評価履歴をPostgreSQLに取り込むスクレイパー。
package main

import (
	"fmt"
	"os"

	"github.com/praxede/cinepool/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "cinepool: %v\n", err)
		os.Exit(1)
	}
}
