// Package contextbuilder assembles the system prompt and message list fed
// to the provider layer: an identity block, bootstrap files, memory notes,
// requested skill bodies, and a skills summary index, concatenated with
// blank-line separators per spec §4.5.
//
// Section concatenation is grounded on internal/agent/context/packer.go's
// budget-aware message assembly, generalized from "pack history to fit a
// char budget" to "concatenate five named sections"; skill rendering is
// grounded on internal/skills/parser.go's frontmatter-stripped bodies.
package contextbuilder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/max-de-bug/zoidclaw/internal/memorynotes"
	"github.com/max-de-bug/zoidclaw/internal/skills"
	"github.com/max-de-bug/zoidclaw/pkg/models"
)

// bootstrapFiles are concatenated, in this order, when present in the
// workspace root (spec §4.5 item 2).
var bootstrapFiles = []string{"SYSTEM.md", "CLAUDE.md", "INSTRUCTIONS.md"}

// Identity carries the facts the identity block reports about the
// running agent and the current turn's transport.
type Identity struct {
	AgentName     string
	WorkspacePath string
	Channel       string
	ChatID        string
	ServiceStatus string
	Guidelines    string
}

// Builder assembles system prompts from workspace bootstrap files, a
// memory store, and a skill store.
type Builder struct {
	identity Identity
	memory   *memorynotes.Store
	skills   *skills.Store
}

// New creates a Builder. memory and skills may be nil, in which case their
// sections are omitted.
func New(identity Identity, memory *memorynotes.Store, skillStore *skills.Store) *Builder {
	return &Builder{identity: identity, memory: memory, skills: skillStore}
}

// BuildMessages assembles the system prompt, appends history verbatim,
// then appends the current user turn — spec §4.5's
// build_messages(history, current_turn, skill_names).
func (b *Builder) BuildMessages(history []models.ChatMessage, currentTurn string, skillNames []string) []models.ChatMessage {
	out := make([]models.ChatMessage, 0, len(history)+2)
	out = append(out, models.ChatMessage{
		Role:      models.RoleSystem,
		Content:   b.buildPrompt(skillNames),
		Timestamp: time.Now(),
	})
	out = append(out, history...)
	out = append(out, models.ChatMessage{
		Role:      models.RoleUser,
		Content:   currentTurn,
		Timestamp: time.Now(),
	})
	return out
}

// buildPrompt concatenates the five sections with blank-line separators.
func (b *Builder) buildPrompt(skillNames []string) string {
	var sections []string

	sections = append(sections, b.identityBlock())

	if bootstrap := b.bootstrapSection(); bootstrap != "" {
		sections = append(sections, bootstrap)
	}
	if memory := b.memorySection(); memory != "" {
		sections = append(sections, memory)
	}
	if skillsBody := b.skillsSection(skillNames); skillsBody != "" {
		sections = append(sections, skillsBody)
	}
	if summary := b.skillsSummarySection(); summary != "" {
		sections = append(sections, summary)
	}

	return strings.Join(sections, "\n\n")
}

func (b *Builder) identityBlock() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s, an agent operating in %s.\n", nonEmpty(b.identity.AgentName, "the agent"), b.identity.WorkspacePath)
	fmt.Fprintf(&sb, "Channel: %s  Chat: %s  Status: %s\n", b.identity.Channel, b.identity.ChatID, nonEmpty(b.identity.ServiceStatus, "running"))
	fmt.Fprintf(&sb, "Wall clock: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&sb, "Host: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if b.identity.Guidelines != "" {
		fmt.Fprintf(&sb, "%s", b.identity.Guidelines)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (b *Builder) bootstrapSection() string {
	var parts []string
	for _, name := range bootstrapFiles {
		path := filepath.Join(b.identity.WorkspacePath, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		parts = append(parts, strings.TrimSpace(string(data)))
	}
	return strings.Join(parts, "\n\n")
}

func (b *Builder) memorySection() string {
	if b.memory == nil {
		return ""
	}
	notes := b.memory.All(context.Background())
	if len(notes) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Memory:\n")
	for _, n := range notes {
		fmt.Fprintf(&sb, "- %s\n", n.Text)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (b *Builder) skillsSection(names []string) string {
	if b.skills == nil || len(names) == 0 {
		return ""
	}
	var parts []string
	for _, name := range names {
		entry, ok := b.skills.Get(name)
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("## Skill: %s\n%s", entry.Name, entry.Body))
	}
	return strings.Join(parts, "\n\n")
}

func (b *Builder) skillsSummarySection() string {
	if b.skills == nil {
		return ""
	}
	all := b.skills.All()
	if len(all) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Available skills (request by name to load):\n")
	for _, entry := range all {
		fmt.Fprintf(&sb, "- %s: %s (%s)\n", entry.Name, entry.Description, entry.Source)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func nonEmpty(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
