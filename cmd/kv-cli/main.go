// kv-cli is an interactive client for the kvstore line protocol. It
// connects to a running server over TCP and offers a readline-style REPL
// with history: liner for input/history, pflag for flags, and an optional
// hujson (JSON-with-comments) config file merged under CLI overrides.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"
	"github.com/tailscale/hujson"
)

// config holds the settings kv-cli connects with. JSON-tagged so it can be
// loaded from a hujson (JSONC) file and overridden by flags.
type config struct {
	Addr string `json:"addr,omitempty"`
}

func defaultConfig() config {
	return config{Addr: "127.0.0.1:6379"}
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("kv-cli", flag.ContinueOnError)
	addr := fs.StringP("addr", "a", "", "server address (host:port)")
	configPath := fs.StringP("config", "c", "", "path to a hujson config file")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: kv-cli [--addr host:port] [--config file]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	conn, err := net.DialTimeout("tcp", cfg.Addr, 5*time.Second)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", cfg.Addr, err)
	}
	defer conn.Close()

	repl := &repl{conn: conn, reader: bufio.NewReader(conn), addr: cfg.Addr}
	return repl.run()
}

// loadConfig reads an optional hujson config file, falling back to
// defaultConfig when path is empty or the file does not exist.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// repl is the interactive command loop driving a connection to the server.
type repl struct {
	conn   net.Conn
	reader *bufio.Reader
	addr   string
	liner  *liner.State
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".kv-cli_history")
}

func (r *repl) run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	if f, err := os.Open(historyFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}

	fmt.Printf("kv-cli connected to %s\n", r.addr)
	fmt.Println("Type 'help' for available commands.")

	for {
		line, err := r.liner.Prompt("kv> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println("\nBye!")
				break
			}
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.liner.AppendHistory(line)

		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") || strings.EqualFold(line, "q") {
			fmt.Println("Bye!")
			break
		}
		if strings.EqualFold(line, "help") || line == "?" {
			r.printHelp()
			continue
		}

		reply, err := r.sendCommand(line)
		if err != nil {
			fmt.Printf("connection error: %v\n", err)
			r.saveHistory()
			return err
		}
		fmt.Print(reply)
	}

	r.saveHistory()
	return nil
}

func (r *repl) sendCommand(line string) (string, error) {
	if _, err := r.conn.Write([]byte(line + "\n")); err != nil {
		return "", err
	}
	reply, err := r.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return reply, nil
}

func (r *repl) saveHistory() {
	path := historyFile()
	if path == "" {
		return
	}

	var buf strings.Builder
	if _, err := r.liner.WriteHistory(&buf); err != nil {
		return
	}
	// natefinch/atomic writes through a temp file and renames into place,
	// so a crash mid-write never leaves a truncated history file.
	_ = atomic.WriteFile(path, strings.NewReader(buf.String()))
}

func (r *repl) completer(line string) []string {
	commands := []string{"get", "set", "del", "ping", "stats", "help", "exit", "quit"}
	var out []string
	lower := strings.ToLower(line)
	for _, c := range commands {
		if strings.HasPrefix(c, lower) {
			out = append(out, c)
		}
	}
	return out
}

func (r *repl) printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  GET <key>                       Fetch a value")
	fmt.Println("  SET <key> <value> [<ttlMillis>] Store a value, optionally with a TTL")
	fmt.Println("  DEL <key>                       Remove a key")
	fmt.Println("  PING                            Liveness check")
	fmt.Println("  STATS                           Show engine resource usage")
	fmt.Println("  help                            Show this help")
	fmt.Println("  exit / quit / q                 Disconnect and exit")
}
