package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

// Minimal views of the API responses used by the script.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type chatView struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Messages []struct {
		Content string `json:"content"`
		IsUser  bool   `json:"is_user"`
		Pending bool   `json:"pending"`
	} `json:"messages"`
}

type chatListView struct {
	Chats []chatView `json:"chats"`
	Busy  bool       `json:"busy"`
}

type availabilityView struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
	Indicator string `json:"indicator"`
}

var client = &http.Client{Timeout: 30 * time.Second}

func main() {
	baseURL := flag.String("url", "http://localhost:3000/api/chat/v1", "chat API base URL")
	timeout := flag.Duration("timeout", 3*time.Minute, "how long to wait for each reply")
	flag.Parse()

	prompts := flag.Args()
	if len(prompts) == 0 {
		prompts = []string{"Hi", "Tell me a fun fact about octopuses."}
	}

	color.Cyan("Apin Chat simulation against %s\n", *baseURL)

	color.Yellow("\n1. Refresh availability")
	var availability envelope[availabilityView]
	if err := call(http.MethodPost, *baseURL+"/availability/refresh", nil, &availability); err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s (%s)", availability.Data.Indicator, availability.Data.Message)
	if !availability.Data.Available {
		os.Exit(1)
	}

	color.Yellow("\n2. Create chat")
	var created envelope[chatView]
	if err := call(http.MethodPost, *baseURL+"/chats", nil, &created); err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	chatID := created.Data.ID
	color.Green("Chat: %s", chatID)

	for i, prompt := range prompts {
		color.Yellow("\n%d. Send %q", i+3, prompt)

		start := time.Now()
		if err := call(http.MethodPost, *baseURL+"/messages", map[string]string{"text": prompt}, nil); err != nil {
			color.Red("Failed: %v", err)
			os.Exit(1)
		}

		chat, err := waitForReply(*baseURL, chatID, *timeout)
		if err != nil {
			color.Red("Failed: %v", err)
			os.Exit(1)
		}
		last := chat.Messages[len(chat.Messages)-1]
		color.Green("AI (%v): %s", time.Since(start).Round(time.Millisecond), last.Content)
	}

	// The title arrives after the first reply; give it a moment.
	time.Sleep(2 * time.Second)
	chat, err := findChat(*baseURL, chatID)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Cyan("\nFinal title: %s (%d turns)", chat.Title, len(chat.Messages))
}

func waitForReply(baseURL, chatID string, timeout time.Duration) (*chatView, error) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		var list envelope[chatListView]
		if err := call(http.MethodGet, baseURL+"/chats", nil, &list); err != nil {
			return nil, err
		}
		if !list.Data.Busy {
			for i := range list.Data.Chats {
				if list.Data.Chats[i].ID == chatID {
					return &list.Data.Chats[i], nil
				}
			}
			return nil, fmt.Errorf("chat %s disappeared", chatID)
		}
		time.Sleep(500 * time.Millisecond)
	}
	return nil, fmt.Errorf("no reply within %v", timeout)
}

func findChat(baseURL, chatID string) (*chatView, error) {
	var list envelope[chatListView]
	if err := call(http.MethodGet, baseURL+"/chats", nil, &list); err != nil {
		return nil, err
	}
	for i := range list.Data.Chats {
		if list.Data.Chats[i].ID == chatID {
			return &list.Data.Chats[i], nil
		}
	}
	return nil, fmt.Errorf("chat %s not found", chatID)
}

func call(method, url string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API Error %d: %s", resp.StatusCode, string(data))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
