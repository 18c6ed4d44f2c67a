package redis

import (
	"fmt"

	"github.com/mcoot/blackjack-go/internal/model"
)

// Key prefix for all blackjack data
const keyPrefix = "bj"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// registeredPlayerKey returns the Redis key for a RegisteredPlayer
func registeredPlayerKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:registered_player:%s", keyPrefix, playerID)
}

// usernameIndexKey returns the Redis key for the username -> player_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// sessionKey returns the Redis key for an auth session
func sessionKey(token string) string {
	return fmt.Sprintf("%s:auth:%s", keyPrefix, token)
}

// tableKey returns the Redis key for a table snapshot
func tableKey(id model.TableID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// codeKey returns the Redis key for the code -> table_id index
func codeKey(code model.TableCode) string {
	return fmt.Sprintf("%s:code:%s", keyPrefix, code)
}

// lockKey namespaces a lock name
func lockKey(name string) string {
	return fmt.Sprintf("%s:lock:%s", keyPrefix, name)
}
