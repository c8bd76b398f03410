package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// CheckCommand is advisory filtering layered as denylist, allowlist and a
// metacharacter scan. It does not parse shell grammar and must not be used
// as the only isolation between the model and the host.
func CheckCommand(command string) CommandVerdict {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return unsafeCommand("empty command")
	}

	tokens := strings.Fields(trimmed)
	name := strings.ToLower(tokens[0])

	if _, denied := deniedCommands[name]; denied {
		return unsafeCommand(fmt.Sprintf("command %q is blocked", name))
	}

	if _, allowed := allowedCommands[name]; !allowed && !isInspectionSubcommand(name, tokens) {
		return unsafeCommand(fmt.Sprintf("command %q is not allowlisted", name))
	}

	_, reachability := reachabilityCommands[name]
	for i, token := range tokens {
		if reachability && i > 0 {
			if !isReachabilityArgument(token) {
				return unsafeCommand(fmt.Sprintf("argument %q is not a host, flag or number", token))
			}
			continue
		}
		if strings.ContainsAny(token, shellMetacharacters) {
			return unsafeCommand(fmt.Sprintf("token %q contains shell metacharacters", token))
		}
	}

	return CommandVerdict{Safe: true}
}

type CommandVerdict struct {
	Safe   bool
	Reason string
}

func unsafeCommand(reason string) CommandVerdict {
	return CommandVerdict{Safe: false, Reason: reason}
}

const shellMetacharacters = "><|&;`$*?[]{}\\'\"()"

var deniedCommands = setOf(
	"rm", "del", "format", "mkfs", "dd", "sudo", "su", "chmod", "chown", "passwd", "fdisk",
	"mount", "umount", "curl", "wget", "apt", "yum", "dnf", "pacman", "brew", "pip", "npm",
	"yarn", "gem", "composer", "cargo", "go", "systemctl", "service", "init", "shutdown",
	"reboot", "poweroff", "halt", "kill", "pkill", "killall", "useradd", "userdel",
	"groupadd", "groupdel", "visudo", "crontab", "ssh", "telnet", "nc", "netcat",
	"iptables", "ufw", "firewall-cmd", "cat", ":(){:|:&};:", "eval", "exec", "source", ".",
)

var allowedCommands = setOf(
	"echo", "date", "uptime", "whoami", "hostname", "uname", "pwd", "ls", "dir", "type",
	"head", "tail", "wc", "grep", "find", "ping", "traceroute", "tracepath", "netstat",
	"ifconfig", "ipconfig", "ps", "top", "htop", "free", "df", "du",
)

var reachabilityCommands = setOf("ping")

var inspectionSubcommands = map[string]map[string]struct{}{
	"ip": setOf("addr", "address", "link", "route"),
}

var (
	hostArgumentPattern   = regexp.MustCompile(`^[a-zA-Z0-9.\-:]+$`)
	optionArgumentPattern = regexp.MustCompile(`^-[a-zA-Z0-9]+$`)
	numberArgumentPattern = regexp.MustCompile(`^[0-9]+$`)
)

func isInspectionSubcommand(name string, tokens []string) bool {
	subcommands, ok := inspectionSubcommands[name]
	if !ok || len(tokens) < 2 {
		return false
	}

	_, ok = subcommands[strings.ToLower(tokens[1])]
	return ok
}

func isReachabilityArgument(token string) bool {
	return hostArgumentPattern.MatchString(token) ||
		optionArgumentPattern.MatchString(token) ||
		numberArgumentPattern.MatchString(token)
}

func setOf(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set
}
