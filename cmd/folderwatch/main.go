/*
Package main is folderwatch, a small terminal tool that joins a folder's
collaboration room and logs membership and update events as they happen. Useful
for watching a live session without opening the web application.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"paperboard/internal/app/collab"
	"paperboard/internal/collabclient"
	"paperboard/internal/pkg/logx"
)

func main() {
	serverURL := flag.String("server", "ws://localhost:8080/ws/collab", "collaboration endpoint URL")
	folderID := flag.String("folder", "", "folder to watch (required)")
	userID := flag.String("user", "folderwatch", "user id to announce")
	userName := flag.String("name", "Folder Watch", "display name to announce")
	flag.Parse()

	if *folderID == "" {
		fmt.Fprintln(os.Stderr, "usage: folderwatch -folder <id> [-server url] [-user id] [-name display]")
		os.Exit(2)
	}

	logx.Init(true)

	client := collabclient.New(collabclient.Config{
		ServerURL: *serverURL,
		UserID:    *userID,
		UserName:  *userName,
	})

	client.OnPresence(func(users []collabclient.User) {
		names := make([]string, 0, len(users))
		for _, u := range users {
			names = append(names, u.UserName)
		}
		logx.Info("presence changed", "folder_id", *folderID, "members", strings.Join(names, ", "))
	})

	client.OnUpdate(func(msg collab.Message) {
		logx.Info("folder updated", "folder_id", msg.FolderID, "by", msg.UserName)
	})

	client.JoinFolder(*folderID)
	if !client.IsConnected() {
		logx.Warn("could not join folder; check the server URL and folder id")
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	client.LeaveFolder()
	logx.Info("left folder, exiting")
}
