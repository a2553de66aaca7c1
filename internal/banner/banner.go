package banner

import (
	"github.com/charmbracelet/lipgloss"

	"playerload/internal/tui/styles"
)

const ascii = `
       _                       _                 _
 _ __ | | __ _ _   _  ___ _ __| | ___   __ _  __| |
| '_ \| |/ _' | | | |/ _ \ '__| |/ _ \ / _' |/ _' |
| |_) | | (_| | |_| |  __/ |  | | (_) | (_| | (_| |
| .__/|_|\__,_|\__, |\___|_|  |_|\___/ \__,_|\__,_|
|_|            |___/`

func GetString() string {
	style := lipgloss.DefaultRenderer().NewStyle().
		Foreground(styles.ColorBanner).
		Bold(true)

	tagline := styles.Subtle.Render("  how many players can your server take?")
	return "\n" + style.Render(ascii) + "\n" + tagline + "\n"
}
