// Package cli implements the interactive chat client.
//
// On start it restores a saved session from the local state database, if
// there is one, and opens the realtime socket so incoming messages are
// printed as they arrive and kept in the local inbox.
//
// Commands
//
//	signup                   create an account and sign in
//	login                    sign in
//	logout                   sign out and forget the saved session
//	whoami                   show the signed-in user
//	users                    list everyone else
//	history <userID>         show the conversation with a user
//	send <userID> <text...>  send a text message
//	sendimg <userID> <path>  send an image file
//	avatar <path>            set the profile picture
//	inbox [n]                show the last n messages received live
//	help                     list commands
//	exit | quit              leave
package cli
