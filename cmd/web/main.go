package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/DenisKhanov/ScreenTeacher/internal/app/web"
)

func main() {
	ctx := context.Background()
	a, err := web.NewApp(ctx)
	if err != nil {
		logrus.Fatalf("failed to init app: %s", err.Error())
	}
	a.Run()
}
