package version

// Version is set at build time with -ldflags "-X github.com/chirichan/pwdconv/version.Version=...".
var Version = "dev"
