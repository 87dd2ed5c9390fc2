package banner

import (
	"io"

	"benchit/internal/styles"
)

// GetString returns the help banner rendered for w.
func GetString(w io.Writer) string {
	ascii := `
    __                    __    _ __ 
   / /_  ___  ____  _____/ /_  (_) /_
  / __ \/ _ \/ __ \/ ___/ __ \/ / __/
 / /_/ /  __/ / / / /__/ / / / / /_  
/_.___/\___/_/ /_/\___/_/ /_/_/\__/  `

	return "\n" + styles.For(w).Banner.Render(ascii) + "\n"
}
