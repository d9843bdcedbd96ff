package main

import (
	"github.com/jsvensson/templfmt/internal/lsp"
	"github.com/tliron/go-kutil/util"
)

var version = "dev"

func main() {
	s := lsp.NewServer(version)
	if err := s.Run(); err != nil {
		util.Exit(1)
	}
	util.Exit(0)
}
