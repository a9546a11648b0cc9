package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"travel-backoffice/internal/pkg/config"

	"ariga.io/atlas-go-sdk/atlasexec"
	"github.com/kelseyhightower/envconfig"
)

func main() {
	var (
		dir     = flag.String("dir", "file://migrations", "マイグレーションディレクトリのURL")
		atlas   = flag.String("atlas", "atlas", "atlas CLIの実行パス")
		dryRun  = flag.Bool("dry-run", false, "SQLを表示するのみで適用しない")
		status  = flag.Bool("status", false, "適用状況のみ表示する")
		timeout = flag.Duration("timeout", 2*time.Minute, "全体のタイムアウト")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	var dbCfg config.DBConfig
	if err := envconfig.Process("", &dbCfg); err != nil {
		logger.Error("DB設定の読み込みに失敗しました", "error", err)
		os.Exit(1)
	}

	client, err := atlasexec.NewClient(".", *atlas)
	if err != nil {
		logger.Error("atlasクライアントの初期化に失敗しました", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *status {
		st, err := client.MigrateStatus(ctx, &atlasexec.MigrateStatusParams{
			DirURL: *dir,
			URL:    dbCfg.BuildDSN(),
		})
		if err != nil {
			logger.Error("マイグレーション状況の取得に失敗しました", "error", err)
			os.Exit(1)
		}
		logger.Info("マイグレーション状況",
			"status", st.Status,
			"current", st.Current,
			"next", st.Next,
			"pending", len(st.Pending))
		return
	}

	res, err := client.MigrateApply(ctx, &atlasexec.MigrateApplyParams{
		DirURL: *dir,
		URL:    dbCfg.BuildDSN(),
		DryRun: *dryRun,
	})
	if err != nil {
		logger.Error("マイグレーションの適用に失敗しました", "error", err)
		os.Exit(1)
	}

	logger.Info("マイグレーション適用完了",
		"applied", len(res.Applied),
		"current", res.Current,
		"target", res.Target,
		"dry_run", *dryRun)
}
