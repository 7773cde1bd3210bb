package main

import (
	"log"

	"plughost/internal/app"

	// 内置模块与插件通过 init() 注册
	_ "plughost/internal/plugins/hello"
	_ "plughost/internal/settings"
)

var (
	Version = "dev"
	Commit  = "none"  //Current commit
	Build   = "local" //Building time
)

func main() {
	if err := app.Run(Version, Commit, Build); err != nil {
		log.Fatalf("[app] %v", err)
	}
}
