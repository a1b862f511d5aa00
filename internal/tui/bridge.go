package tui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lox/liarsdice/internal/client"
	"github.com/lox/liarsdice/internal/server"
)

// SetupNetworkHandlers sets up direct event handlers between client and TUI
func SetupNetworkHandlers(c *client.Client, tui *TUIModel) {
	// Tracks what was already narrated so repeated snapshots don't repeat log
	// lines. Snapshots are the only game feed; the deltas are derived here.
	var lastBetKey, lastChallengeKey, lastStatus string

	c.AddEventHandler(server.MessageTypeRoomCreated, func(msg *server.Message) {
		var data server.RoomCreatedData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}

		tui.AddBoldLogEntry(fmt.Sprintf("Created room %q (%s)", data.Room.Name, data.Room.ID))
		tui.AddLogEntry("Join it with: /join " + data.Room.ID)

		tui.notifyMessageCallback(string(server.MessageTypeRoomCreated))
	})

	c.AddEventHandler(server.MessageTypeRoomList, func(msg *server.Message) {
		var data server.RoomListData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}

		tui.AddLogEntry("")
		if len(data.Rooms) == 0 {
			tui.AddLogEntry("No rooms waiting for players. /create makes one.")
		} else {
			tui.AddLogEntry("Rooms waiting for players:")
			for _, room := range data.Rooms {
				tui.AddLogEntry(fmt.Sprintf("  %s: %s (%d players)",
					room.ID, room.Name, room.UserCount))
			}
		}

		tui.notifyMessageCallback(string(server.MessageTypeRoomList))
	})

	c.AddEventHandler(server.MessageTypeRoomJoined, func(msg *server.Message) {
		var data server.RoomJoinedData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}

		c.SetIdentity(data.RoomID, data.UserID)
		lastBetKey, lastChallengeKey, lastStatus = "", "", ""

		tui.AddBoldLogEntry("Joined room " + data.RoomID)
		tui.AddLogEntry("Use /addcpu to add CPU players and /start to begin.")

		tui.notifyMessageCallback(string(server.MessageTypeRoomJoined))
	})

	c.AddEventHandler(server.MessageTypeUpdate, func(msg *server.Message) {
		var snapshot server.RoomSnapshot
		if err := json.Unmarshal(msg.Data, &snapshot); err != nil {
			return
		}

		userID := c.UserID()
		tui.SetRoomInfo(snapshot.ID, snapshot.Name, string(snapshot.Status))

		// Seat list for the sidebar
		players := make([]PlayerInfo, 0, len(snapshot.Users))
		for _, p := range snapshot.Users {
			players = append(players, PlayerInfo{
				Name:        p.Name,
				DiceCount:   len(p.Dice),
				IsMyTurn:    p.IsMyTurn,
				IsCPU:       p.IsCPU,
				IsConnected: p.IsConnected,
			})
		}
		sort.Slice(players, func(i, j int) bool { return players[i].Name < players[j].Name })
		tui.UpdatePlayers(players)

		// Narrate the game status transitions
		status := string(snapshot.Status)
		if status != lastStatus {
			switch snapshot.Status {
			case "playing":
				tui.AddBoldLogEntry("=== Game started ===")
			case "finished":
				tui.AddBoldLogEntry("=== Game over ===")
				for _, p := range snapshot.Users {
					if len(p.Dice) > 0 {
						tui.AddBoldLogEntry(fmt.Sprintf("%s wins!", p.Name))
					}
				}
			}
			lastStatus = status
		}

		// Narrate a freshly resolved challenge before the new bet state
		if result := snapshot.LastChallengeResult; result != nil {
			key := fmt.Sprintf("%s|%s|%d|%d", result.ChallengerID, result.RaisedUserID, result.Face, result.ActualCount)
			if key != lastChallengeKey {
				bidderName := result.RaisedUserID
				if bidder, ok := snapshot.Users[result.RaisedUserID]; ok {
					bidderName = bidder.Name
				}
				tui.AddLogEntry("")
				tui.AddLogEntry(fmt.Sprintf("%s challenges %s's bet of %d × %s!",
					result.ChallengerName, bidderName, result.ExpectedCount, faceName(result.Face)))
				for _, hand := range result.AllDice {
					tui.AddLogEntry(fmt.Sprintf("  %s had %v", hand.Name, hand.Dice))
				}
				if result.Success {
					tui.AddLogEntry(SuccessStyle.Render(fmt.Sprintf(
						"Challenge succeeds: only %d on the table. %s loses a die.",
						result.ActualCount, bidderName)))
				} else {
					tui.AddLogEntry(ErrorStyle.Render(fmt.Sprintf(
						"Challenge fails: %d on the table. %s loses a die.",
						result.ActualCount, result.ChallengerName)))
				}
				lastChallengeKey = key
			}
		}

		// Narrate new bets
		if bet := snapshot.CurrentBet; bet != nil {
			key := fmt.Sprintf("%s|%d|%d", bet.UserID, bet.Count, bet.Face)
			if key != lastBetKey {
				name := bet.UserID
				if p, ok := snapshot.Users[bet.UserID]; ok {
					name = p.Name
				}
				tui.AddLogEntry(fmt.Sprintf("%s bets %d × %s", name, bet.Count, faceName(bet.Face)))
				lastBetKey = key
			}
			tui.UpdateCurrentBet(&BetInfo{
				Count:      bet.Count,
				Face:       bet.Face,
				PlayerName: betterName(&snapshot, bet.UserID),
			})
		} else {
			lastBetKey = ""
			tui.UpdateCurrentBet(nil)
		}

		// My turn and hand
		var turnName string
		var isMyTurn bool
		var myDice []int
		for id, p := range snapshot.Users {
			if p.IsMyTurn {
				turnName = p.Name
				isMyTurn = id == userID
			}
			if id == userID {
				myDice = p.Dice
			}
		}
		tui.SetMyTurn(isMyTurn, turnName, myDice)

		tui.notifyMessageCallback(string(server.MessageTypeUpdate))
	})

	c.AddEventHandler(server.MessageTypeClose, func(msg *server.Message) {
		var data server.CloseData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}

		c.SetIdentity("", "")
		tui.SetRoomInfo("", "", "")
		tui.UpdatePlayers(nil)
		tui.UpdateCurrentBet(nil)
		tui.SetMyTurn(false, "", nil)
		tui.AddLogEntry("Disconnected from room: " + data.Reason)

		tui.notifyMessageCallback(string(server.MessageTypeClose))
	})

	c.AddEventHandler(server.MessageTypeNotFound, func(msg *server.Message) {
		var data server.NotFoundData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}

		tui.AddLogEntry(fmt.Sprintf("Room not found: %s", data.RoomID))
	})

	c.AddEventHandler(server.MessageTypeError, func(msg *server.Message) {
		var data server.ErrorData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}

		tui.AddLogEntry(fmt.Sprintf("Server error [%s]: %s", data.Code, data.Message))
	})
}

func betterName(snapshot *server.RoomSnapshot, userID string) string {
	if p, ok := snapshot.Users[userID]; ok {
		return p.Name
	}
	return userID
}

// StartCommandHandler starts the command handling loop for the TUI
func StartCommandHandler(c *client.Client, tui *TUIModel) {
	go func() {
		for {
			action, args, shouldContinue, err := tui.WaitForAction()
			if err != nil {
				continue
			}

			if !shouldContinue {
				break
			}

			// Handle special commands
			if strings.HasPrefix(action, "/") || action == "quit" {
				handleCommand(c, tui, action, args)
			} else if action != "" {
				// Handle game actions (when it's the player's turn)
				handleGameAction(c, tui, action, args)
			}
		}
	}()
}

// handleCommand processes lobby commands like /create, /join, /quit
func handleCommand(c *client.Client, tui *TUIModel, action string, args []string) {
	switch action {
	case "/create":
		if err := c.CreateRoom(); err != nil {
			tui.AddLogEntry(fmt.Sprintf("Error creating room: %v", err))
		}

	case "/list":
		if err := c.ListRooms(); err != nil {
			tui.AddLogEntry(fmt.Sprintf("Error listing rooms: %v", err))
		}

	case "/join":
		if len(args) == 0 {
			tui.AddLogEntry("Usage: /join <room_id>")
			return
		}
		if err := c.JoinRoom(args[0]); err != nil {
			tui.AddLogEntry(fmt.Sprintf("Error joining room: %v", err))
		}

	case "/addcpu":
		count := 1
		if len(args) > 0 {
			parsed, err := strconv.Atoi(args[0])
			if err != nil {
				tui.AddLogEntry(fmt.Sprintf("Error: invalid count: %s", args[0]))
				return
			}
			count = parsed
		}
		if err := c.AddCPUs(count); err != nil {
			tui.AddLogEntry(fmt.Sprintf("Error adding CPUs: %v", err))
		}

	case "/start":
		if err := c.StartGame(); err != nil {
			tui.AddLogEntry(fmt.Sprintf("Error starting game: %v", err))
		}

	case "/leave":
		if c.RoomID() == "" {
			tui.AddLogEntry("You're not in a room")
			return
		}
		if err := c.LeaveRoom(); err != nil {
			tui.AddLogEntry(fmt.Sprintf("Error leaving room: %v", err))
			return
		}
		c.SetIdentity("", "")
		tui.SetRoomInfo("", "", "")
		tui.UpdatePlayers(nil)
		tui.UpdateCurrentBet(nil)
		tui.SetMyTurn(false, "", nil)
		tui.AddLogEntry("Left room")

	case "/quit", "quit":
		tui.SendQuitSignal()

	default:
		tui.AddLogEntry(fmt.Sprintf("Unknown command: %s", action))
		tui.AddLogEntry("Available commands: /create, /list, /join, /addcpu, /start, /leave, /quit")
	}
}

// handleGameAction processes game actions when it's the player's turn
func handleGameAction(c *client.Client, tui *TUIModel, action string, args []string) {
	switch action {
	case "b", "bet":
		if len(args) < 2 {
			tui.AddLogEntry("Usage: bet <count> <face>")
			return
		}
		count, err := strconv.Atoi(args[0])
		if err != nil {
			tui.AddLogEntry(fmt.Sprintf("Error: invalid count: %s", args[0]))
			return
		}
		face, err := strconv.Atoi(args[1])
		if err != nil {
			tui.AddLogEntry(fmt.Sprintf("Error: invalid face: %s", args[1]))
			return
		}
		if err := c.PlaceBet(count, face); err != nil {
			tui.AddLogEntry(fmt.Sprintf("Error sending bet: %v", err))
		}

	case "c", "challenge", "liar":
		if err := c.Challenge(); err != nil {
			tui.AddLogEntry(fmt.Sprintf("Error sending challenge: %v", err))
		}

	default:
		tui.AddLogEntry(fmt.Sprintf("Unknown action: %s", action))
		tui.AddLogEntry("Actions: bet <count> <face>, challenge")
	}
}
