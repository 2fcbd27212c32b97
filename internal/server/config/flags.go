package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/flagx"
)

var serverFlags = []string{"-a", "-d", "-s", "-t", "-m", "-l", "-o", "-u", "-p", "-b", "-g", "-e", "-w", "-i", "-v"}

// parseFlags populates Config from command-line flags:
//
//	-a string   HTTP bind address (e.g. ":5001")
//	-d string   PostgreSQL DSN, or "memory"
//	-s string   JWT HMAC secret key
//	-t int      token validity, minutes
//	-m string   environment: development | production
//	-l bool     revoke tokens on logout (use -l=true)
//	-o string   comma-separated CORS origins
//	-u string   S3 access key
//	-p string   S3 secret key
//	-b string   S3 bucket
//	-g string   S3 region
//	-e string   S3 endpoint
//	-w string   public URL prefix for uploaded objects
//	-i int      max image size, bytes
//	-v string   log level
//
// Only the flags above are looked at, so -c/-config and anything else on
// the command line does not cause a parse error.
func parseFlags(config *Config) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenMinutes := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token validity (in minutes)")
	fs.StringVar(&config.Environment, "m", config.Environment, "environment")
	fs.BoolVar(&config.RevokeOnLogout, "l", config.RevokeOnLogout, "revoke tokens on logout")
	origins := fs.String("o", strings.Join(config.CORSOrigins, ","), "CORS origins")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 access key")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 endpoint")
	fs.StringVar(&config.S3PublicURL, "w", config.S3PublicURL, "public URL prefix for uploads")
	fs.Int64Var(&config.MaxImageBytes, "i", config.MaxImageBytes, "max image size in bytes")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(os.Args[1:], serverFlags)); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.TokenValidityDuration = time.Duration(*tokenMinutes) * time.Minute
		case "o":
			config.CORSOrigins = splitOrigins(*origins)
		}
	})
}
