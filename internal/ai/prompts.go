package ai

const extractSystem = "You extract actionable tasks from meeting transcripts and answer with JSON only."

// extractPrompt takes the current local date and the transcript.
const extractPrompt = `Analyze the following meeting transcript and extract actionable tasks.

For each task:
1. Give it a specific "title" in verb-noun form.
2. Write a detailed "description" with context, requirements and expected outcome.
3. Put any deadline in "deadline" as YYYY-MM-DD, resolving relative dates against today, %s.
4. Set "priority" to "High", "Medium" or "Low" for every task.
5. Put the steps of a task in a "subtasks" array of the same shape.

Merge tasks that describe the same work into one task with subtasks.

Answer with the JSON list only, for example:
[
  {
    "title": "Create My Tasks Page",
    "description": "Develop a page listing the tasks assigned to the current user.",
    "deadline": "YYYY-MM-DD",
    "priority": "High",
    "subtasks": [
      {
        "title": "Add Task Completion Checkbox",
        "description": "Let users mark tasks complete from the My Tasks page.",
        "deadline": "YYYY-MM-DD",
        "priority": "Medium"
      }
    ]
  }
]

Meeting transcript:
---
%s
---`

const summarySystem = "You summarize meeting transcripts for the team. Keep the language professional and free of offensive words."

const summaryPrompt = `Write structured meeting minutes for the transcript below, under 1000 words and shorter for short transcripts:
1. Context: purpose of the meeting and who took part.
2. Discussion highlights, grouped by topic.
3. Decisions made and who owns them.
4. Action items with owner, deadline and dependencies.
5. Open questions.
6. Next steps.

Paraphrase rather than quote. Leave out speaker ids and filler.

Transcript:
%s`
