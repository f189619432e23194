package rest

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"voyager.com/holdem/game"
	"voyager.com/holdem/nats"
)

var restLogger = log.With().Str("logger_name", "rest::rest").Logger()

var manager *game.Manager
var adapter *nats.TableAdapter

type appError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type newTablePayload struct {
	RoomID  string         `json:"roomId"`
	Players []*game.Player `json:"players"`
}

// RunRestServer exposes the admin/debug surface: creating and ending
// tables, dealing the next hand and inspecting redacted room state.
func RunRestServer(gameManager *game.Manager, tableAdapter *nats.TableAdapter, port int) {
	manager = gameManager
	adapter = tableAdapter
	r := gin.Default()

	r.GET("/ready", ready)
	r.GET("/tables", listTables)
	r.GET("/tables/:roomId", tableState)
	r.POST("/tables", newTable)
	r.POST("/tables/:roomId/deal", dealHand)
	r.POST("/tables/:roomId/players/:playerId/leave", leaveTable)
	r.POST("/tables/:roomId/end", endTable)

	r.Run(fmt.Sprintf(":%d", port))
}

func ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func listTables(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": manager.RoomIDs()})
}

func tableState(c *gin.Context) {
	roomID := c.Param("roomId")
	session, ok := manager.GetSession(roomID)
	if !ok {
		c.IndentedJSON(http.StatusNotFound, appError{
			Code:    http.StatusNotFound,
			Message: fmt.Sprintf("room %s not found", roomID),
		})
		return
	}
	snapshot, err := session.CurrentSnapshot()
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, appError{
			Code:    http.StatusInternalServerError,
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func newTable(c *gin.Context) {
	var payload newTablePayload
	err := c.BindJSON(&payload)
	if err != nil {
		restLogger.Error().Msgf("Unable to parse new table payload. Error: %v", err)
		c.IndentedJSON(http.StatusBadRequest, appError{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
		return
	}

	session, err := manager.CreateTable(payload.RoomID, payload.Players)
	if err != nil {
		restLogger.Error().Msgf("Unable to create table. Error: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, appError{
			Code:    http.StatusInternalServerError,
			Message: err.Error(),
		})
		return
	}
	err = adapter.SubscribeRoom(session.RoomID())
	if err != nil {
		restLogger.Error().Msgf("Unable to subscribe room %s. Error: %v", session.RoomID(), err)
		c.IndentedJSON(http.StatusInternalServerError, appError{
			Code:    http.StatusInternalServerError,
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"roomId": session.RoomID()})
}

func dealHand(c *gin.Context) {
	roomID := c.Param("roomId")
	session, ok := manager.GetSession(roomID)
	if !ok {
		c.IndentedJSON(http.StatusNotFound, appError{
			Code:    http.StatusNotFound,
			Message: fmt.Sprintf("room %s not found", roomID),
		})
		return
	}
	err := session.StartHand()
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, appError{
			Code:    http.StatusInternalServerError,
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func leaveTable(c *gin.Context) {
	roomID := c.Param("roomId")
	playerID, err := strconv.ParseUint(c.Param("playerId"), 10, 64)
	if err != nil {
		c.IndentedJSON(http.StatusBadRequest, appError{
			Code:    http.StatusBadRequest,
			Message: fmt.Sprintf("invalid player id %s", c.Param("playerId")),
		})
		return
	}
	session, ok := manager.GetSession(roomID)
	if !ok {
		c.IndentedJSON(http.StatusNotFound, appError{
			Code:    http.StatusNotFound,
			Message: fmt.Sprintf("room %s not found", roomID),
		})
		return
	}
	err = session.RemovePlayer(playerID)
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, appError{
			Code:    http.StatusInternalServerError,
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func endTable(c *gin.Context) {
	roomID := c.Param("roomId")
	adapter.UnsubscribeRoom(roomID)
	err := manager.EndTable(roomID)
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, appError{
			Code:    http.StatusInternalServerError,
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}
