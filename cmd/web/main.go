package main

import "shiftwork_backend/internal/app"

func main() {
	app.Run()
}
