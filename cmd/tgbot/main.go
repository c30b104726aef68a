package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/DenisKhanov/ScreenTeacher/internal/app/tbot"
)

func main() {
	ctx := context.Background()
	a, err := tbot.NewApp(ctx)
	if err != nil {
		logrus.Fatalf("failed to init app: %s", err.Error())
	}
	a.Run()
}
