package main

import "github.com/adanyl0v/go-todo-web/internal/app"

func main() {
	app.InitDefaultLogger()
	app.MustReadEnv()
	app.MustInitApplicationLogger()

	app.MustInitTaskService()
	defer app.CloseTaskService()

	app.MustListenAndServeHTTP()
}
