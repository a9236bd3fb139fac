package main

import (
	"github.com/corray333/backend-labs/shop/internal/app"
	"github.com/corray333/backend-labs/shop/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
