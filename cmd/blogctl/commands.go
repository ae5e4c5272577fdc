package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/R3E-Network/blog_service/internal/app/httpapi"
	"github.com/R3E-Network/blog_service/internal/httputil"
	"github.com/R3E-Network/blog_service/pkg/logger"
)

const defaultServer = "http://localhost:8080"

// command is a blogctl subcommand.
type command struct {
	usage string
	short string
	flags func(fs *flag.FlagSet) func(ctx context.Context, c *httputil.Client, args []string) (any, error)
}

var commands = map[string]command{
	"list": {
		usage: "list",
		short: "List all posts",
		flags: func(*flag.FlagSet) func(context.Context, *httputil.Client, []string) (any, error) {
			return func(ctx context.Context, c *httputil.Client, _ []string) (any, error) {
				var out []httpapi.PostResponse
				err := call(ctx, c, http.MethodGet, "/posts", nil, &out)
				return out, err
			}
		},
	},
	"get": {
		usage: "get <id> | get --slug <slug>",
		short: "Show one post",
		flags: func(fs *flag.FlagSet) func(context.Context, *httputil.Client, []string) (any, error) {
			slug := fs.String("slug", "", "Look the post up by slug")
			return func(ctx context.Context, c *httputil.Client, args []string) (any, error) {
				path := "/posts/slug/" + url.PathEscape(*slug)
				if *slug == "" {
					id, err := idArg(args)
					if err != nil {
						return nil, err
					}
					path = "/posts/" + id
				}
				var out httpapi.PostResponse
				err := call(ctx, c, http.MethodGet, path, nil, &out)
				return out, err
			}
		},
	},
	"create": {
		usage: "create --title <t> --slug <s> [--body <b>]",
		short: "Create a post",
		flags: func(fs *flag.FlagSet) func(context.Context, *httputil.Client, []string) (any, error) {
			title := fs.StringP("title", "t", "", "Post title")
			slug := fs.StringP("slug", "s", "", "Post slug")
			body := fs.StringP("body", "b", "", "Post body; - reads stdin")
			return func(ctx context.Context, c *httputil.Client, _ []string) (any, error) {
				text, err := bodyText(*body)
				if err != nil {
					return nil, err
				}
				req := httpapi.CreatePostRequest{Title: *title, Slug: *slug, Body: text}
				var out httpapi.PostResponse
				err = call(ctx, c, http.MethodPost, "/posts", req, &out)
				return out, err
			}
		},
	},
	"update": {
		usage: "update <id> --title <t> [--body <b>]",
		short: "Replace a post's title and body",
		flags: func(fs *flag.FlagSet) func(context.Context, *httputil.Client, []string) (any, error) {
			title := fs.StringP("title", "t", "", "Post title")
			body := fs.StringP("body", "b", "", "Post body; - reads stdin")
			return func(ctx context.Context, c *httputil.Client, args []string) (any, error) {
				id, err := idArg(args)
				if err != nil {
					return nil, err
				}
				text, err := bodyText(*body)
				if err != nil {
					return nil, err
				}
				req := httpapi.UpdatePostRequest{Title: *title, Body: text}
				var out httpapi.PostResponse
				err = call(ctx, c, http.MethodPut, "/posts/"+id, req, &out)
				return out, err
			}
		},
	},
	"delete": {
		usage: "delete <id>",
		short: "Delete a post",
		flags: func(*flag.FlagSet) func(context.Context, *httputil.Client, []string) (any, error) {
			return func(ctx context.Context, c *httputil.Client, args []string) (any, error) {
				id, err := idArg(args)
				if err != nil {
					return nil, err
				}
				var out httpapi.MessageResponse
				err = call(ctx, c, http.MethodDelete, "/posts/"+id, nil, &out)
				return out, err
			}
		},
	},
	"health": {
		usage: "health",
		short: "Check server health",
		flags: func(*flag.FlagSet) func(context.Context, *httputil.Client, []string) (any, error) {
			return func(ctx context.Context, c *httputil.Client, _ []string) (any, error) {
				var out httpapi.HealthResponse
				err := call(ctx, c, http.MethodGet, "/health", nil, &out)
				return out, err
			}
		},
	},
}

// stdin is swapped in tests.
var stdin io.Reader = os.Stdin

// run executes blogctl and returns the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("blogctl", flag.ContinueOnError)
	global.SetInterspersed(false)
	global.SetOutput(io.Discard)
	server := global.String("server", envOr("BLOG_SERVER", defaultServer), "Blog API base URL ($BLOG_SERVER)")
	timeout := global.Duration("timeout", 10*time.Second, "Request timeout")

	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(stdout, global)
			return 0
		}
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}

	rest := global.Args()
	if len(rest) == 0 {
		printUsage(stderr, global)
		return 2
	}

	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "error: unknown command %q\n", rest[0])
		return 2
	}

	fs := flag.NewFlagSet(rest[0], flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	execute := cmd.flags(fs)
	if err := fs.Parse(rest[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stdout, "Usage: blogctl %s\n\n%s\n", cmd.usage, cmd.short)
			if fs.HasFlags() {
				fmt.Fprintf(stdout, "\nFlags:\n%s", fs.FlagUsages())
			}
			return 0
		}
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}

	client := httputil.NewClient(httputil.ClientConfig{BaseURL: *server, Timeout: *timeout})
	ctx = logger.WithTraceID(ctx, logger.NewTraceID())
	out, err := execute(ctx, client, fs.Args())
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		var statusErr *httputil.StatusError
		if errors.As(err, &statusErr) && statusErr.TraceID != "" {
			fmt.Fprintln(stderr, "trace id:", statusErr.TraceID)
		}
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func printUsage(w io.Writer, global *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: blogctl [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-44s %s\n", commands[name].usage, commands[name].short)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, global.FlagUsages())
}

// call performs one request and decodes the JSON response into target,
// which must be a pointer.
func call(ctx context.Context, c *httputil.Client, method, path string, body, target any) error {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	return httputil.DecodeResponse(resp, target)
}

func idArg(args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("expected exactly one post id")
	}
	if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
		return "", fmt.Errorf("invalid post id %q", args[0])
	}
	return args[0], nil
}

func bodyText(flagValue string) (string, error) {
	if flagValue != "-" {
		return flagValue, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read body from stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
