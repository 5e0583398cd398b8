package mcpserver

// RecurrenceRules describes how the calendar decides which days an activity
// is due. LLM consumers read it before predicting agendas.
const RecurrenceRules = `# Caseificio Recurrence Rules

Every activity has an anchor ` + "`" + `date` + "`" + ` (yyyy-MM-dd). An activity is never due
before its anchor.

## Activity types

- **protocol**: generated from a production. Due exactly on production date + step day.
  Never repeats. Regenerated whenever the production or its cheese type changes.
- **one-time**: due exactly on its date.
- **recurring**: due on every day matched by its ` + "`" + `recurrence` + "`" + ` rule.

## Rules

| rule | due on |
|---|---|
| none | the anchor only |
| daily | every day from the anchor |
| weekly | every 7 days from the anchor |
| monthly | the anchor's day-of-month, every month |
| quarterly | the anchor's day-of-month, every 3 months |
| semiannual | the anchor's day-of-month, every 6 months |
| annual | the anchor's month and day, every year |

Months that lack the anchor's day are **skipped**, not clamped: an activity anchored on
2026-01-31 with rule ` + "`" + `monthly` + "`" + ` is due on 2026-03-31 but not in February or April.
An annual activity anchored on 29 February is due only in leap years.

## Completion

- protocol and one-time activities have a single ` + "`" + `completed` + "`" + ` flag.
- recurring activities keep ` + "`" + `completed_dates` + "`" + `: each occurrence is completed
  on its own, so finishing today's cleaning does not complete next week's.

Use the ` + "`" + `toggle_completion` + "`" + ` tool with the occurrence date to flip it.
`
