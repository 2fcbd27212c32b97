// Package config loads runtime configuration for the chat CLI client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the chat server
//	-s string   path of the local state database
//	-t int      request timeout (seconds)
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:5001",
//	  "state_db": "chat-client.db",
//	  "request_timeout": "10s"
//	}
package config
