// Package main provides a load testing tool for the realtime WebSocket stream.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"socialnova/internal/models"
	"socialnova/pkg/client"

	"github.com/gorilla/websocket"
	"github.com/jessevdk/go-flags"
)

// Metrics tracks the test results
type Metrics struct {
	ConnectionsAttempted int64
	ConnectionsSuccess   int64
	ConnectionsFailed    int64
	PostsPublished       int64
	MessagesReceived     int64
	PostEventsReceived   int64
	Errors               int64
}

var metrics Metrics

// nolint:lll,gochecknoglobals
var opts = struct {
	BaseURL  string        `long:"base-url" env:"WSLOAD_BASE_URL" default:"http://localhost:8375" description:"API server base URL"`
	Login    string        `long:"login" default:"creative_explorer" description:"email or username to sign in with"`
	Password string        `long:"password" default:"password123" description:"password"`
	Clients  int           `long:"clients" default:"50" description:"number of concurrent sockets"`
	Duration time.Duration `long:"duration" default:"30s" description:"test duration"`
	Publish  time.Duration `long:"publish-every" default:"2s" description:"interval between published posts, 0 disables publishing"`
}{}

func main() {
	if _, err := flags.Parse(&opts); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		log.Fatalf("Failed to parse flags: %v", err)
	}

	log.Printf("Starting WebSocket load test")
	log.Printf("Target: %s", opts.BaseURL)
	log.Printf("Clients: %d", opts.Clients)
	log.Printf("Duration: %v", opts.Duration)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := client.New(opts.BaseURL)
	session, err := api.Auth().SignIn(ctx, opts.Login, opts.Password)
	if err != nil {
		log.Fatalf("Login failed: %v", err)
	}
	log.Printf("Logged in as %s", session.User.Username)

	wsURL, err := streamURL(opts.BaseURL, session.AccessToken)
	if err != nil {
		log.Fatalf("Invalid base URL: %v", err)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	stopChan := make(chan struct{})

	for i := 0; i < opts.Clients; i++ {
		wg.Add(1)
		go runClient(wsURL, stopChan, &wg)
		time.Sleep(20 * time.Millisecond)
	}

	if opts.Publish > 0 {
		wg.Add(1)
		go publish(ctx, api, opts.Publish, stopChan, &wg)
	}

	select {
	case <-time.After(opts.Duration):
		log.Println("Test duration reached")
	case <-interrupt:
		log.Println("Interrupted by user")
	}

	close(stopChan)
	cancel()
	log.Println("Waiting for clients to disconnect...")
	wg.Wait()

	printMetrics()
}

// streamURL maps http(s)://host to ws(s)://host/api/ws?token=...
func streamURL(baseURL, token string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path += "/api/ws"
	u.RawQuery = url.Values{"token": {token}}.Encode()
	return u.String(), nil
}

func runClient(wsURL string, stopChan <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	atomic.AddInt64(&metrics.ConnectionsAttempted, 1)

	c, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		atomic.AddInt64(&metrics.Errors, 1)
		return
	}
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = c.Close() }()

	atomic.AddInt64(&metrics.ConnectionsSuccess, 1)

	go func() {
		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				return
			}
			atomic.AddInt64(&metrics.MessagesReceived, 1)
			var env struct {
				Type string `json:"type"`
			}
			if json.Unmarshal(raw, &env) == nil && strings.HasPrefix(env.Type, "post_") {
				atomic.AddInt64(&metrics.PostEventsReceived, 1)
			}
		}
	}()

	<-stopChan
	_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// publish creates posts so every socket receives broadcast traffic.
func publish(ctx context.Context, api *client.Client, every time.Duration, stopChan <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for n := 1; ; n++ {
		select {
		case <-stopChan:
			return
		case <-ticker.C:
			var post models.Post
			err := api.From("posts").Insert(ctx, map[string]string{
				"media_url":  fmt.Sprintf("https://picsum.photos/seed/wsload-%d/800/800", n),
				"media_type": string(models.MediaTypeImage),
				"caption":    fmt.Sprintf("Load test post %d", n),
			}, &post)
			if err != nil {
				if ctx.Err() == nil {
					atomic.AddInt64(&metrics.Errors, 1)
				}
				continue
			}
			atomic.AddInt64(&metrics.PostsPublished, 1)
		}
	}
}

func printMetrics() {
	log.Println("Test Results")
	log.Println("============")
	log.Printf("Connections Attempted: %d", atomic.LoadInt64(&metrics.ConnectionsAttempted))
	log.Printf("Connections Successful: %d", atomic.LoadInt64(&metrics.ConnectionsSuccess))
	log.Printf("Connections Failed: %d", atomic.LoadInt64(&metrics.ConnectionsFailed))
	log.Printf("Posts Published: %d", atomic.LoadInt64(&metrics.PostsPublished))
	log.Printf("Messages Received: %d", atomic.LoadInt64(&metrics.MessagesReceived))
	log.Printf("Post Events Received: %d", atomic.LoadInt64(&metrics.PostEventsReceived))
	log.Printf("Total Errors: %d", atomic.LoadInt64(&metrics.Errors))
}
