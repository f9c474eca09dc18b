package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/andy6609/multimode-tcp-server/internal/chat"
	"github.com/andy6609/multimode-tcp-server/internal/client"
	"github.com/andy6609/multimode-tcp-server/internal/shutdown"
)

func main() {
	addr := flag.String("addr", "", "server address (default 127.0.0.1:8080 chat, 127.0.0.1:8082 job)")
	exitCommand := flag.String("exit-command", chat.DefaultExitCommand, "chat command that ends the session")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [chat|job]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	ctrl := shutdown.New(context.Background())
	defer ctrl.Stop()
	ctx := ctrl.Context()

	switch flag.Arg(0) {
	case "", "chat":
		if *addr == "" {
			*addr = "127.0.0.1:8080"
		}
		fmt.Printf("Connecting to %s, type '%s' to leave.\n", *addr, *exitCommand)
		if err := client.Chat(ctx, *addr, os.Stdin, os.Stdout, *exitCommand); err != nil {
			fmt.Fprintln(os.Stderr, "chat:", err)
			os.Exit(1)
		}
		fmt.Println("Connection closed.")
	case "job", "agendador":
		if *addr == "" {
			*addr = "127.0.0.1:8082"
		}
		fmt.Print("Job to submit: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			os.Exit(1)
		}
		reply, err := client.SubmitJob(ctx, *addr, line)
		if err != nil {
			fmt.Fprintln(os.Stderr, "job:", err)
			os.Exit(1)
		}
		fmt.Print("Server replied: ", reply)
	default:
		fmt.Fprintf(os.Stderr, "invalid mode %q\n", flag.Arg(0))
		flag.Usage()
		os.Exit(2)
	}
}
