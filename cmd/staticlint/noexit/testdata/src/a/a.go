package main

import (
	"log"
	"os"
)

func main() {
	if len(os.Args) > 3 {
		log.Fatal("too many args") // want `вызов log.Fatal в функции main запрещён`
	}
	defer func() {
		os.Exit(3)
	}()
	os.Exit(1) // want `вызов os.Exit в функции main запрещён`
}

func exit(code int) {
	os.Exit(code)
}
