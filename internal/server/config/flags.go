package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/filedo/internal/flagx"
)

// parseFlags overlays short command-line flags.
//
//	-a string   HTTP bind address
//	-G string   gRPC bind address ("" disables)
//	-t string   database driver: pgx | mysql
//	-d string   database DSN
//	-s string   manifest secret key
//	-r list     storage roots, comma separated
//	-z string   staging directory for archives
//	-U string   user in the generated scp command
//	-m int      max upload size, MiB
//	-R string   Redis address ("" disables the cache)
//	-x int      cache TTL, minutes
//	-u/-p       S3 credentials
//	-b string   S3 bucket ("" disables publishing)
//	-g string   S3 region
//	-e string   S3 base endpoint
//	-l int      presigned URL validity, minutes
//	-L string   log level
//
// Only these flags are picked out of args, so other components can share
// the command line.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{
		"-a", "-G", "-t", "-d", "-s", "-r", "-z", "-U", "-m", "-R", "-x",
		"-u", "-p", "-b", "-g", "-e", "-l", "-L",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "G", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDriver, "t", config.DatabaseDriver, "database driver (pgx, mysql)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "manifest secret key")

	roots := flagx.StringList(config.SearchPaths)
	fs.Var(&roots, "r", "storage roots, comma separated")

	fs.StringVar(&config.StagingDir, "z", config.StagingDir, "archive staging directory")
	fs.StringVar(&config.SCPUser, "U", config.SCPUser, "user in the scp fetch command")
	maxUpload := fs.Int64("m", config.MaxUploadBytes>>20, "max upload size (MiB)")
	fs.StringVar(&config.RedisAddr, "R", config.RedisAddr, "redis address")
	cacheTTL := fs.Int("x", int(config.CacheTTL.Minutes()), "cache TTL (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	presign := fs.Int("l", int(config.PresignValidity.Minutes()), "presigned URL validity (in minutes)")
	fs.StringVar(&config.LogLevel, "L", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SearchPaths = roots
	config.MaxUploadBytes = *maxUpload << 20
	config.CacheTTL = time.Duration(*cacheTTL) * time.Minute
	config.PresignValidity = time.Duration(*presign) * time.Minute
}
