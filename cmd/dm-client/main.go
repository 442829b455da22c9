package main

import (
	"context"
	"dm-lab/client"
	"dm-lab/domain"
	grpcclient "dm-lab/grpc/client"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerAddress string        `env:"DM_SERVER_ADDR,default=localhost:8080"`
	Token         string        `env:"DM_TOKEN,required=true"`
	Self          string        `env:"DM_SELF,required=true"`
	Peer          string        `env:"DM_PEER,required=true"`
	PollInterval  time.Duration `env:"DM_POLL_INTERVAL,default=2s"`
	MarkRead      bool          `env:"DM_MARK_READ,default=true"`
	LogLevel      string        `env:"LOG_LEVEL,default=INFO"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run follows one conversation: it prints new messages as they are polled
// and, unless disabled, marks what the peer sent as read.
func run() (int, error) {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := grpc.NewClient(config.ServerAddress, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to server at %s: %w", config.ServerAddress, err)
	}
	defer func() {
		log.Info("Closing connection...")
		_ = conn.Close()
	}()

	messageClient := grpcclient.NewMessageClient(conn, config.Token)
	poller := client.NewPoller(log, messageClient, config.Self, config.Peer, config.PollInterval)

	log.Info("Following conversation", "self", config.Self, "peer", config.Peer, "server", config.ServerAddress)
	err = poller.Run(ctx, func(added []domain.MessageView) {
		for _, message := range added {
			render(config.Self, message)
		}
		timeline := poller.Timeline()
		if config.MarkRead && timeline.Unread() > 0 {
			if _, err := messageClient.MarkRead(ctx, config.Self, config.Peer); err != nil {
				log.Warn("Mark read failed", "error", err)
				return
			}
			timeline.MarkReceivedRead(time.Now().UTC())
		}
	})
	if err != nil {
		return exitRuntime, err
	}
	return exitOK, nil
}

func render(self string, message domain.MessageView) {
	at := message.CreatedAt.Local().Format("15:04:05")
	if message.SenderID == self {
		color.Cyan.Printf("[%s] me: %s\n", at, message.Content)
		return
	}
	name := message.Sender.Name
	if name == "" {
		name = message.SenderID
	}
	color.Green.Printf("[%s] %s: %s\n", at, name, message.Content)
}
