package handler

import (
	"net/http"

	"linechat/internal/app/chat"
	"linechat/internal/pkg/resp"
)

// HandleHealth reports that the server is up.
func HandleHealth(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]string{
			"status":  "ok",
			"service": deps.Config.ServerName,
		})
	}
}

// OnlineUsersData is the payload of GET /api/users.
type OnlineUsersData struct {
	Users    []chat.UserSummary `json:"users"`
	Sessions int                `json:"sessions"`
}

// HandleOnlineUsers lists online user names and how many sessions each one has.
func HandleOnlineUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users := deps.Hub.OnlineUsers()

		total := 0
		for _, u := range users {
			total += u.Sessions
		}

		resp.RespondSuccess(w, r, OnlineUsersData{
			Users:    users,
			Sessions: total,
		})
	}
}

// HandleHistory returns the public lines currently held for replay, oldest first.
func HandleHistory(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]any{
			"capacity": deps.Config.HistorySize,
			"messages": deps.Hub.History(),
		})
	}
}
