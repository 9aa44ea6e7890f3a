package main

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/lipgloss"
	"github.com/common-nighthawk/go-figure"
)

var taglines = [...]string{
	"Be kind, please rewind.",
	"Late fees are charged per day. The tape does not care about your excuses.",
	"The tracking is off again. Have you tried hitting the top of the machine?",
	"Every tape on the shelf has a story. Some of them are even good.",
	"Seven days sounds like a long time until it is day eight.",
	"Somebody rented the last copy. Somebody always does.",
	"The horror aisle is in the back. It is always in the back.",
	"Reviews are how the next customer avoids your mistakes.",
	"We open when you open the app.",
	"The counter is staffed by a REST API. It never takes lunch.",
}

var (
	bannerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#e879f9")).Bold(true)
	taglineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	cmdStyle     = lipgloss.NewStyle().Bold(true)
	descStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	welcomeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80")).Bold(true)
)

func banner() string {
	return bannerStyle.Render(figure.NewFigure("vhs rental", "cybermedium", true).String())
}

func printHelp(out io.Writer) {
	commands := []struct{ cmd, desc string }{
		{"vhsrental", "Browse the shop (interactive TUI)"},
		{"vhsrental login", "Sign in with email and password"},
		{"vhsrental register", "Create an account"},
		{"vhsrental logout", "End your session"},
		{"vhsrental whoami", "Show the signed-in user"},
		{"vhsrental --version", "Show version"},
		{"vhsrental help", "You are here"},
	}

	fmt.Fprintln(out, banner())
	fmt.Fprintln(out, "  "+taglineStyle.Render(taglines[0]))
	fmt.Fprintln(out)
	for _, c := range commands {
		fmt.Fprintf(out, "  %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", descStyle.Render("Config: ~/.config/vhsrental/config.toml, or set "+envConfig))
}

func printWelcome(out io.Writer, name string) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  "+welcomeStyle.Render("Welcome, "+name+"."))
	fmt.Fprintln(out, "  "+taglineStyle.Render(taglines[rand.IntN(len(taglines))]))
	fmt.Fprintln(out)
}
