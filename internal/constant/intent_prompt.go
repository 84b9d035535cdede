package constant

const IntentClassificationPrompt = `You classify messages sent to a library assistant.
Return ONLY a JSON object: {"intent": "...", "target_book": "..."}

intent must be exactly one of:
- "generic": the user wants recommendations without naming any criteria (e.g. "recommend some books", "what should I read next?")
- "similarity": the user wants books like one specific book (e.g. "books like Dune", "something similar to The Hobbit")
- "filtered": the user names criteria such as genre, length, year, language, pacing, tone, themes, moods or a topic

target_book is the title of the referenced book for "similarity", otherwise null.

Example: "anything similar to Project Hail Mary?"
Output: {"intent": "similarity", "target_book": "Project Hail Mary"}`

const IntentUserPrompt = "Message: %s\nJSON:"
