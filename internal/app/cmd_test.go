package app

import (
	"reflect"
	"testing"
)

func TestParseCommand_DefaultsToScrape(t *testing.T) {
	cmd := ParseCommand([]string{})
	if cmd != CommandScrape {
		t.Errorf("ParseCommand([]) = %q, want %q", cmd, CommandScrape)
	}
}

func TestParseCommand_Scrape(t *testing.T) {
	cmd := ParseCommand([]string{"scrape"})
	if cmd != CommandScrape {
		t.Errorf("ParseCommand([scrape]) = %q, want %q", cmd, CommandScrape)
	}
}

func TestParseCommand_Worker(t *testing.T) {
	cmd := ParseCommand([]string{"worker"})
	if cmd != CommandWorker {
		t.Errorf("ParseCommand([worker]) = %q, want %q", cmd, CommandWorker)
	}
}

func TestParseCommand_Migrate(t *testing.T) {
	cmd := ParseCommand([]string{"migrate"})
	if cmd != CommandMigrate {
		t.Errorf("ParseCommand([migrate]) = %q, want %q", cmd, CommandMigrate)
	}
}

func TestParseCommand_Healthcheck(t *testing.T) {
	cmd := ParseCommand([]string{"healthcheck"})
	if cmd != CommandHealthcheck {
		t.Errorf("ParseCommand([healthcheck]) = %q, want %q", cmd, CommandHealthcheck)
	}
}

// アカウントIDを先頭引数に置いた起動はスクレイプモードになること。
func TestParseCommand_AccountArgDefaultsToScrape(t *testing.T) {
	cmd := ParseCommand([]string{"ada", "grace"})
	if cmd != CommandScrape {
		t.Errorf("ParseCommand([ada grace]) = %q, want %q", cmd, CommandScrape)
	}
}

func TestParseCommand_IgnoresExtraArgs(t *testing.T) {
	cmd := ParseCommand([]string{"worker", "ada", "grace"})
	if cmd != CommandWorker {
		t.Errorf("ParseCommand([worker ada grace]) = %q, want %q", cmd, CommandWorker)
	}
}

func TestAccountArgs_StripsSubcommand(t *testing.T) {
	got := AccountArgs([]string{"scrape", "ada", "grace"})
	want := []string{"ada", "grace"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AccountArgs = %v, want %v", got, want)
	}
}

func TestAccountArgs_BareAccountList(t *testing.T) {
	got := AccountArgs([]string{"ada", "grace"})
	want := []string{"ada", "grace"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AccountArgs = %v, want %v", got, want)
	}
}

func TestAccountArgs_Empty(t *testing.T) {
	if got := AccountArgs(nil); got != nil {
		t.Errorf("AccountArgs(nil) = %v, want nil", got)
	}
	if got := AccountArgs([]string{"worker"}); len(got) != 0 {
		t.Errorf("AccountArgs([worker]) = %v, want 空", got)
	}
}

func TestCommandString(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{CommandScrape, "scrape"},
		{CommandWorker, "worker"},
		{CommandMigrate, "migrate"},
		{CommandHealthcheck, "healthcheck"},
	}

	for _, tt := range tests {
		if got := string(tt.cmd); got != tt.want {
			t.Errorf("Command(%q) string = %q, want %q", tt.cmd, got, tt.want)
		}
	}
}
