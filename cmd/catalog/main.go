// Command catalog runs the error catalog HTTP API and its maintenance tasks.
package main

import "github.com/tbourn/go-error-catalog/internal/cli"

func main() {
	cli.Execute()
}
