package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// Every client event uses the callback ack contract:
// {success: true, data?} on success, {success: false, error} on failure.

// ackOf splits the trailing ack callback, when the client asked for
// one, from the event payload.
func ackOf(args []interface{}) (socket.Ack, []interface{}) {
	if len(args) > 0 {
		if cb, ok := args[len(args)-1].(socket.Ack); ok {
			return cb, args[:len(args)-1]
		}
	}
	return nil, args
}

func ackOK(ack socket.Ack, data interface{}) {
	if ack == nil {
		return
	}
	reply := gin.H{"success": true}
	if data != nil {
		reply["data"] = data
	}
	ack([]interface{}{reply}, nil)
}

func ackErr(ack socket.Ack, err error) {
	if ack == nil {
		return
	}
	ack([]interface{}{gin.H{"success": false, "error": err.Error()}}, nil)
}

// payloadOf returns the first argument as an object payload, or an
// empty map when the client sent none.
func payloadOf(args []interface{}) map[string]interface{} {
	if len(args) > 0 {
		if m, ok := args[0].(map[string]interface{}); ok {
			return m
		}
	}
	return map[string]interface{}{}
}

func strField(payload map[string]interface{}, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

func boolField(payload map[string]interface{}, key string) bool {
	if v, ok := payload[key].(bool); ok {
		return v
	}
	return false
}

func strSliceField(payload map[string]interface{}, key string) []string {
	raw, ok := payload[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
