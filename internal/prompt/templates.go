package prompt

// Each template receives a MemoryProfile. Text fields are printed as-is;
// interests go through the bulleted or numbered helpers so an empty list renders nothing.

const claudeTemplate = `I'd like you to act as my personalized AI assistant. Here's my profile to help you provide the most relevant and useful responses:

## Professional Background
- **Role:** {{.Role}}
- **Location:** {{.Location}}
- **Expertise:** {{.Expertise}}

## Communication & Learning Style
- **Preferred Communication:** {{.Communication}}
- **Learning Style:** {{.Learning}}
- **Work Approach:** {{.WorkStyle}}

## Current Context
- **Active Projects:** {{.Projects}}
- **Tools & Environment:** {{.Tools}}
- **Key Constraints:** {{.Constraints}}

## Primary Interests & Focus Areas
{{numbered .Interests}}

## Typical Questions I Ask
{{.Questions}}

Please keep this context in mind for all our interactions. I appreciate responses that are practical, actionable, and aligned with my technical background and current projects. Feel free to reference my tools and expertise when providing solutions.`

const geminiTemplate = `**System Prompt - User Profile Context**

You're assisting a professional with the following background. Tailor your responses accordingly:

**Professional Identity:**
• Role: {{.Role}}
• Location: {{.Location}}
• Core Expertise: {{.Expertise}}

**Communication Preferences:**
• Style: {{.Communication}}
• Learning: {{.Learning}}
• Work Methodology: {{.WorkStyle}}

**Current Focus:**
• Projects: {{.Projects}}
• Technical Stack: {{.Tools}}
• Constraints: {{.Constraints}}

**Domain Interests:**
{{bulleted "→" .Interests}}

**Context:** {{.Questions}}

Provide responses that leverage my existing knowledge, reference familiar tools, and offer solutions I can implement immediately. Prioritize practical, hands-on approaches that fit my workflow.`

const chatgptTemplate = `Please treat me as a {{.Role}} located in {{.Location}} with expertise in {{.Expertise}}.

My communication style is {{.Communication}} and I learn best through {{.Learning}}. I follow a {{.WorkStyle}} approach to work.

Current projects: {{.Projects}}

My technical environment includes: {{.Tools}}

Important constraints to consider: {{.Constraints}}

Key areas of interest:
{{numbered .Interests}}

I typically ask questions about: {{.Questions}}

When responding, please:
- Reference my existing expertise and tools
- Provide practical, immediately actionable advice
- Consider my time constraints and work style
- Offer examples relevant to my interests and projects
- Assume familiarity with my technical background

This context should guide all our future conversations in this session.`

const grokTemplate = `🚀 CONTEXT: {{.Role}} @ {{.Location}}

**PROFESSIONAL PROFILE:**
→ Expertise: {{.Expertise}}
→ Current Focus: {{.Projects}}
→ Tech Stack: {{.Tools}}
→ Constraints: {{.Constraints}}

**COMMUNICATION & LEARNING:**
→ Style: {{.Communication}}
→ Learning: {{.Learning}}
→ Work Philosophy: {{.WorkStyle}}

**INTERESTS & FOCUS AREAS:**
{{bulleted "•" .Interests}}

**QUERY PATTERNS:** {{.Questions}}

🎯 **INSTRUCTION:** Reference my background, suggest compatible solutions, and provide actionable advice that fits my workflow. Keep it practical and implementation-focused.`

const perplexityTemplate = `**Professional Context for Search & Analysis:**

**Role & Expertise:** {{.Role}} specializing in {{.Expertise}} ({{.Location}})

**Technical Environment:**
- Current Projects: {{.Projects}}
- Technology Stack: {{.Tools}}
- Working Constraints: {{.Constraints}}

**Preferences:**
- Communication: {{.Communication}}
- Learning Style: {{.Learning}}
- Work Approach: {{.WorkStyle}}

**Research Interests:**
{{bulleted "→" .Interests}}

**Typical Query Context:** {{.Questions}}

When researching and analyzing information, prioritize sources and solutions that align with my technical environment and professional focus. Include practical implementation details and cite relevant technical documentation.`

const llamaTemplate = `System: You are assisting a {{.Role}} based in {{.Location}}.

User Profile:
- Expertise: {{.Expertise}}
- Projects: {{.Projects}}
- Tools: {{.Tools}}
- Constraints: {{.Constraints}}
- Communication Style: {{.Communication}}
- Learning Style: {{.Learning}}
- Work Style: {{.WorkStyle}}

Interest Areas:
{{bulleted "•" .Interests}}

Query Context: {{.Questions}}

Provide responses that are technical, practical, and directly applicable to the user's environment and expertise level.`

const mistralTemplate = `[INST] You are now my AI assistant. Here's my professional context:

**ROLE:** {{.Role}} ({{.Location}})
**EXPERTISE:** {{.Expertise}}
**CURRENT WORK:** {{.Projects}}
**TECH STACK:** {{.Tools}}
**CONSTRAINTS:** {{.Constraints}}

**PREFERENCES:**
- Communication: {{.Communication}}
- Learning: {{.Learning}}
- Work Style: {{.WorkStyle}}

**INTERESTS:**
{{bulleted "•" .Interests}}

**TYPICAL QUERIES:** {{.Questions}}

Adapt your responses to my professional background and provide practical, implementable solutions. [/INST]

I understand your professional context and will tailor my responses accordingly. How can I assist you today?`

const cohereTemplate = `## User Profile Configuration

**Professional Identity:**
- Position: {{.Role}}
- Location: {{.Location}}
- Core Competency: {{.Expertise}}

**Work Environment:**
- Active Projects: {{.Projects}}
- Technology Stack: {{.Tools}}
- Operating Constraints: {{.Constraints}}

**Communication Framework:**
- Preferred Style: {{.Communication}}
- Learning Approach: {{.Learning}}
- Methodology: {{.WorkStyle}}

**Domain Focus Areas:**
{{numbered .Interests}}

**Query Pattern Analysis:** {{.Questions}}

**Response Guidelines:** Provide contextually relevant responses that build on the user's existing expertise, reference their technical environment, and offer actionable solutions within their stated constraints.`

const anthropicClaudeTemplate = `I'm a {{.Role}} working in {{.Location}}, and I'd like you to serve as my AI research and development partner.

## Professional Context
**Role & Expertise:** {{.Role}} with deep experience in {{.Expertise}}
**Current Projects:** {{.Projects}}
**Technical Environment:** {{.Tools}}
**Working Constraints:** {{.Constraints}}

## Communication & Work Style
**Communication Preference:** {{.Communication}} interactions
**Learning Style:** {{.Learning}} approaches work best for me
**Work Philosophy:** I follow {{.WorkStyle}} methodologies

## Areas of Focus & Interest
{{numbered .Interests}}

## Questions I Typically Bring
{{.Questions}}

## Response Optimization
- Build on my existing {{.Expertise}} knowledge
- Suggest solutions compatible with my {{.Tools}} environment
- Provide immediately implementable advice given my {{.Constraints}}
- Match my {{.Communication}} communication preference
- Use {{.Learning}} explanations and examples

Please maintain this context throughout our conversation and reference my background when providing recommendations.`

const openaiGPT4Template = `You are my personalized AI assistant. Use this professional profile to provide relevant, contextual responses:

**Professional Background:**
I'm a {{.Role}} located in {{.Location}}, with deep expertise in {{.Expertise}}.

**Current Work Context:**
- Active Projects: {{.Projects}}
- Technology Stack: {{.Tools}}
- Operating Constraints: {{.Constraints}}

**Communication & Learning Preferences:**
- Communication Style: I prefer {{.Communication}} responses
- Learning Style: I learn best through {{.Learning}}
- Work Methodology: I follow {{.WorkStyle}} approaches

**Key Interest Areas:**
{{bulleted "•" .Interests}}

**Typical Query Context:** {{.Questions}}

**Instructions for Responses:**
1. Reference my expertise in {{.Expertise}} when relevant
2. Suggest solutions compatible with my {{.Tools}} environment
3. Consider my {{.Constraints}} in all recommendations
4. Use {{.Communication}} communication style
5. Provide {{.Learning}} explanations and examples
6. Maintain consistency with my {{.WorkStyle}} methodology

Keep this profile active throughout our conversation and tailor all responses to my professional context and preferences.`

const otherTemplate = `# AI Assistant Configuration - User Profile

## User Identity & Context
- **Professional Role:** {{.Role}}
- **Geographic Location:** {{.Location}}
- **Core Expertise:** {{.Expertise}}
- **Current Projects:** {{.Projects}}
- **Technology Stack:** {{.Tools}}
- **Operational Constraints:** {{.Constraints}}

## Communication & Learning Preferences
- **Communication Style:** {{.Communication}}
- **Learning Approach:** {{.Learning}}
- **Work Methodology:** {{.WorkStyle}}

## Domain Interests & Focus Areas
{{bulleted "-" .Interests}}

## Typical Questions
{{.Questions}}

## Instructions for AI System
Use this profile to:
1. **Contextualize responses** within the user's professional domain
2. **Reference appropriate tools** from their technology stack
3. **Suggest implementable solutions** within their constraints
4. **Match communication style** to their stated preferences
5. **Provide learning-appropriate explanations** matching their style
6. **Consider work methodology** when recommending processes

## Response Quality Guidelines
- Assume familiarity with stated expertise areas
- Prioritize actionable, implementable advice
- Reference user's tools and environment when relevant
- Respect stated constraints and limitations
- Build on existing knowledge rather than explaining basics
- Maintain consistency with preferred communication style

This profile should guide all interactions and responses in this session.`

// enhancementTemplate asks an LLM to write a model-optimized system prompt.
const enhancementTemplate = `Create a comprehensive system prompt for {{.Model}} that incorporates this user profile:

User Profile:
- Role: {{.Profile.Role}}
- Location: {{.Profile.Location}}
- Expertise: {{.Profile.Expertise}}
- Communication Style: {{.Profile.Communication}}
- Learning Style: {{.Profile.Learning}}
- Work Style: {{.Profile.WorkStyle}}
- Interests: {{join .Profile.Interests ", "}}
- Typical Questions: {{.Profile.Questions}}
- Current Projects: {{.Profile.Projects}}
- Tools: {{.Profile.Tools}}
- Constraints: {{.Profile.Constraints}}

Generate a {{.Model}}-optimized prompt that:
1. Establishes the user's professional context
2. Sets appropriate communication tone
3. References their expertise level
4. Considers their tools and constraints
5. Emphasizes their interests and current focus

Format it specifically for {{.Model}}'s strengths and prompt style. Reply with the prompt text only.`
