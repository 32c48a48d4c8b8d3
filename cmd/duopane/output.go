package main

import "duopane/internal/tui/styles"

func successText(s string) string { return styles.Theme.Success.Render(s) }

func errorText(s string) string { return styles.Theme.Error.Render(s) }

func infoText(s string) string { return styles.Theme.Status.Render(s) }

func emphasisText(s string) string { return styles.Theme.Title.Render(s) }
