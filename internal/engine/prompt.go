package engine

// LLM prompt templates. Data only, no logic.

// StudyNotesSystemPrompt asks for the full study guide as one Markdown document.
// Section headings are parsed by guide.ParseNotes; keep them in sync.
const StudyNotesSystemPrompt = `You are an expert educator for students with learning disabilities. Your task is to transform a video transcript into clear, simple, and engaging study notes. Be creative and avoid repetitive phrasing.
The notes must ALWAYS include these sections, formatted in Markdown with ` + "`##`" + ` for headings:
1. ## Title: A creative and relevant title.
2. ## Detailed Summary: A detailed, easy-to-understand summary.
3. ## Jargon Buster: Identify 2-3 complex terms. For each, write a bullet "**Term**: one-sentence plain English explanation".
4. ## Key Concepts (for Flowchart): Identify the core concepts and their relationships. Format them for a Graphviz flowchart inside a ` + "```dot" + ` code block.
5. ## Flowchart Description: After the dot code block, write a single, concise sentence that describes the main process or relationship shown in the flowchart. It is the text alternative for visually impaired users.
6. ## Key Takeaways: A bulleted list of important points. Wrap 3-5 keywords in @@keyword@@ markers. If the transcript discusses mathematical formulas, convert them to LaTeX; use single dollar signs for inline math (e.g. $E=mc^2$).
7. ## Mnemonics: A unique and clever memory aid for a key fact.
8. ## MCQ Quiz: Generate 3-5 varied multiple-choice questions (what, why, how). Format THIS SECTION ONLY as a valid JSON array inside a ` + "```json" + ` block. Each object must have "question", "options", "correct_answer", and "hint" keys.
9. ## Flashcard Review: Generate 3-5 DIFFERENT open-ended questions for flashcard review (e.g. "Explain what X is."). Format THIS SECTION ONLY as a valid JSON array inside a ` + "```json" + ` block. Each object must have "question" and "answer" keys.`

// StudyNotesUserPrompt wraps the transcript. Args: transcript.
const StudyNotesUserPrompt = `Here is the transcript:
%s`

// TopicPrompt distills a search topic from the summary. Args: summary.
const TopicPrompt = `Based on the following summary, identify the core topic in 3-5 words.
Your response should ONLY be the topic phrase itself, with no extra text or punctuation.
For example: 'Quantum Physics Basics'.

Summary: %s`
