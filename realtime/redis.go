package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

const (
	onlineUsersKey      = "presence:online"
	notificationChannel = "presence:deliveries"
)

// NewRedisClient connects to redis and verifies the connection with a ping.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Println("Connected to redis at", addr)
	return client, nil
}

// RedisPresence shares the online-user set across instances. Sockets stay
// on the instance that accepted them; deliveries for users connected
// elsewhere are published and the owning instance forwards them locally.
type RedisPresence struct {
	local  *Hub
	client *redis.Client
}

type deliveryEnvelope struct {
	UserID uint            `json:"user_id"`
	Data   json.RawMessage `json:"data"`
}

func NewRedisPresence(client *redis.Client) *RedisPresence {
	p := &RedisPresence{
		local:  NewHub(),
		client: client,
	}
	go p.subscribe()
	return p
}

func (p *RedisPresence) subscribe() {
	sub := p.client.Subscribe(context.Background(), notificationChannel)
	for msg := range sub.Channel() {
		var env deliveryEnvelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			log.Printf("Malformed delivery envelope: %v", err)
			continue
		}
		p.local.DeliverRaw(env.UserID, env.Data)
	}
}

func (p *RedisPresence) Register(userID uint, conn *websocket.Conn) {
	p.local.Register(userID, conn)
	if err := p.client.SAdd(context.Background(), onlineUsersKey, memberFor(userID)).Err(); err != nil {
		log.Printf("Failed to mark user %d online in redis: %v", userID, err)
	}
}

func (p *RedisPresence) Remove(userID uint, conn *websocket.Conn) {
	// A stale handler's cleanup after a reconnect must leave both the
	// replacement socket and the shared online set untouched.
	if !p.local.remove(userID, conn) {
		return
	}
	if err := p.client.SRem(context.Background(), onlineUsersKey, memberFor(userID)).Err(); err != nil {
		log.Printf("Failed to mark user %d offline in redis: %v", userID, err)
	}
}

func (p *RedisPresence) IsOnline(userID uint) bool {
	if p.local.IsOnline(userID) {
		return true
	}
	online, err := p.client.SIsMember(context.Background(), onlineUsersKey, memberFor(userID)).Result()
	if err != nil {
		log.Printf("Redis presence check for user %d failed: %v", userID, err)
		return false
	}
	return online
}

func (p *RedisPresence) Deliver(userID uint, payload interface{}) bool {
	if p.local.Deliver(userID, payload) {
		return true
	}
	if !p.IsOnline(userID) {
		return false
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to encode payload for user %d: %v", userID, err)
		return false
	}
	env, err := json.Marshal(deliveryEnvelope{UserID: userID, Data: data})
	if err != nil {
		return false
	}
	if err := p.client.Publish(context.Background(), notificationChannel, env).Err(); err != nil {
		log.Printf("Failed to publish delivery for user %d: %v", userID, err)
		return false
	}
	return true
}

func memberFor(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}
