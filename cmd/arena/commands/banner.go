package commands

import (
	"fmt"

	"github.com/nanhai/arena/version"
)

// printStartupBanner prints the user-friendly startup message
func printStartupBanner(port int, dbPath string) {
	cyan := "\033[36m"
	green := "\033[32m"
	yellow := "\033[33m"
	blue := "\033[34m"
	bold := "\033[1m"
	reset := "\033[0m"

	versionInfo := version.Get()

	fmt.Printf("\n%s%s", cyan, bold)
	fmt.Printf("   ╔══════════════════════════════════════════╗\n")
	fmt.Printf("   ║                                          ║\n")
	fmt.Printf("   ║    █████  ██████  ███████ ███   ██  █████    ║\n")
	fmt.Printf("   ║   ██   ██ ██   ██ ██      ████  ██ ██   ██   ║\n")
	fmt.Printf("   ║   ███████ ██████  █████   ██ ██ ██ ███████   ║\n")
	fmt.Printf("   ║   ██   ██ ██   ██ ██      ██  ████ ██   ██   ║\n")
	fmt.Printf("   ║   ██   ██ ██   ██ ███████ ██   ███ ██   ██   ║\n")
	fmt.Printf("   ║                                          ║\n")
	fmt.Printf("   ╚══════════════════════════════════════════╝%s\n\n", reset)

	fmt.Printf("%s%s┌─ Arena Info ───────────────────────────────┐%s\n", green, bold, reset)
	fmt.Printf("%s│%s Version:  %s (commit %s)\n", green, reset, versionInfo.Version, versionInfo.Short())
	fmt.Printf("%s│%s Port:     %d\n", green, reset, port)
	fmt.Printf("%s│%s Database: %s\n", green, reset, dbPath)
	fmt.Printf("%s└────────────────────────────────────────────┘%s\n", green, reset)

	fmt.Printf("\n%s%s✨ Dashboards refresh live as builds resolve%s\n", yellow, bold, reset)
	fmt.Printf("%s💡 Press Ctrl+C to stop%s\n\n", blue, reset)
}
