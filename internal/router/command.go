package router

import "strings"

// Command is a slash command the bot understands.
type Command string

const (
	CommandStart    Command = "start"
	CommandHelp     Command = "help"
	CommandCancel   Command = "cancel"
	CommandAccounts Command = "accounts"
)

var knownCommands = map[string]Command{
	"/start":    CommandStart,
	"/help":     CommandHelp,
	"/cancel":   CommandCancel,
	"/accounts": CommandAccounts,
}

// DetectCommand reports the slash command a message carries, if any.
// Detection is case-insensitive and accepts the command alone or followed by
// a space and arguments; a "@botname" suffix is stripped the way Telegram
// appends it in group chats. Unknown text, including unknown slash commands,
// returns false and falls through to intent classification.
func DetectCommand(text string) (Command, bool) {
	text = strings.TrimSpace(text)
	if text == "" || !strings.HasPrefix(text, "/") {
		return "", false
	}

	head := text
	if idx := strings.IndexByte(head, ' '); idx >= 0 {
		head = head[:idx]
	}
	if idx := strings.IndexByte(head, '@'); idx >= 0 {
		head = head[:idx]
	}

	cmd, ok := knownCommands[strings.ToLower(head)]
	return cmd, ok
}
