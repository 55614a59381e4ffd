package app

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandScrape は名簿を1回スクレイプして終了するモードを示す。
	CommandScrape Command = "scrape"
	// CommandWorker は定期スクレイプのワーカーモードで起動することを示す。
	CommandWorker Command = "worker"
	// CommandMigrate はデータベースマイグレーションを実行することを示す。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空またはサポート外の先頭引数（アカウントIDなど）の場合は
// CommandScrapeを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandScrape
	}

	switch args[0] {
	case "scrape":
		return CommandScrape
	case "worker":
		return CommandWorker
	case "migrate":
		return CommandMigrate
	case "healthcheck":
		return CommandHealthcheck
	default:
		return CommandScrape
	}
}

// AccountArgs はサブコマンドを除いたアカウントID引数を返す。
// 先頭引数がサブコマンドでない場合は全引数をアカウントIDとして扱う。
func AccountArgs(args []string) []string {
	if len(args) == 0 {
		return nil
	}
	switch args[0] {
	case "scrape", "worker", "migrate", "healthcheck":
		return args[1:]
	}
	return args
}
