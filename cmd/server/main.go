package main

import (
	"log"

	"quicktask/internal/app"
)

// @title                       QuickTask API
// @version                     1.0
// @description                 Task management backend with notifications, exports and analytics.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := app.Run(); err != nil {
		log.Fatalf("[app][fatal] %v", err)
	}
}
