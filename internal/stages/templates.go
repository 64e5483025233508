package stages

import "github.com/BeatGrid/StrategyPipe/internal/models"

// templates holds the immutable stage catalog. Order matters: Next walks
// this slice.
var templates = []models.StageConfig{
	{
		ID:          "stage-1",
		Title:       "Brand Identity & Core",
		Description: "Define the soul of your artist project.",
		Icon:        "BookOpen",
		Steps: []models.StageStep{
			{
				ID:          "core_identity",
				Title:       "The Core",
				Description: "Who are you at the deepest level?",
				Fields: []models.StageField{
					{
						ID:             "archetype",
						Label:          "Primary Archetype",
						Type:           models.FieldTypeSelect,
						AllowCustom:    true,
						AllowSecondary: true,
						Options:        []string{"Rebel", "Sage", "Lover", "Jester", "Magician", "Ruler", "Hero", "Creator", "Caregiver", "Explorer", "Innocent", "Everyman"},
						Placeholder:    "Select your primary archetype...",
						Required:       true,
						AIEnabled:      true,
					},
					{
						ID:          "mission_statement",
						Label:       "Mission Statement",
						Type:        models.FieldTypeTextarea,
						Placeholder: "Why does this project exist? What is your promise to the world?",
						Required:    true,
						AIEnabled:   true,
					},
					{
						ID:          "core_values",
						Label:       "Core Values",
						Type:        models.FieldTypeMultiselect,
						Options:     []string{"Authenticity", "Innovation", "Community", "Rebellion", "Transparency", "Excellence", "Sustainability", "Inclusivity", "Mystery", "Energy"},
						Placeholder: "Select up to 5 core values...",
						Required:    true,
					},
				},
			},
			{
				ID:          "brand_voice",
				Title:       "Voice & Tone",
				Description: "How do you speak to your audience?",
				Fields: []models.StageField{
					{
						ID:          "tone_keywords",
						Label:       "Tone Keywords",
						Type:        models.FieldTypeMultiselect,
						Options:     []string{"Witty", "Serious", "Inspirational", "Aggressive", "Chill", "Cryptic", "Educational", "Vulnerable", "Confident", "Sarcastic"},
						Placeholder: "Select tones...",
						Required:    true,
					},
					{
						ID:          "vocabulary_rules",
						Label:       "Vocabulary & Slang",
						Type:        models.FieldTypeTextarea,
						Placeholder: `Specific words you use or avoid. (e.g. "We call our fans Initiates, never fans")`,
						AIEnabled:   true,
					},
				},
			},
		},
	},
	{
		ID:          "stage-2",
		Title:       "Market & Culture",
		Description: "Where do you fit in the cultural landscape?",
		Icon:        "Globe",
		Steps: []models.StageStep{
			{
				ID:          "target_audience",
				Title:       "Target Audience",
				Description: "Who are you speaking to?",
				Fields: []models.StageField{
					{
						ID:          "age_range_main",
						Label:       "Main Age Range",
						Type:        models.FieldTypeSelect,
						Options:     []string{"13-17", "18-24", "25-34", "35-44", "45+"},
						AllowCustom: true,
						Placeholder: "Select primary age group...",
						Required:    true,
					},
					{
						ID:          "age_range_secondary",
						Label:       "Secondary Age Range",
						Type:        models.FieldTypeSelect,
						Options:     []string{"13-17", "18-24", "25-34", "35-44", "45+"},
						AllowCustom: true,
						Placeholder: "Select secondary age group...",
					},
					{
						ID:          "gender_split",
						Label:       "Gender Split",
						Type:        models.FieldTypeSelect,
						AllowCustom: true,
						Options:     []string{"Male Dominant", "Female Dominant", "Balanced", "Non-Binary/Queer Focus"},
						Placeholder: "Select gender demographic...",
						Required:    true,
					},
					{
						ID:          "location",
						Label:       "Location",
						Type:        models.FieldTypeMultiselect,
						AllowCustom: true,
						Options:     []string{"Worldwide", "USA", "UK", "Europe", "Asia", "Latin America", "Africa", "Australia"},
						Placeholder: "Select key locations...",
						Required:    true,
					},
					{
						ID:        "audience_personas",
						Label:     "Audience Personas",
						Type:      models.FieldTypeArray,
						MaxItems:  3,
						ItemLabel: "Persona",
						Fields: []models.StageField{
							{
								ID:          "name",
								Label:       "Persona Name",
								Type:        models.FieldTypeText,
								Placeholder: `e.g. "The Curated Hipster"`,
								Required:    true,
							},
							{
								ID:          "traits",
								Label:       "Key Traits",
								Type:        models.FieldTypeTextarea,
								Placeholder: "What do they like? Where do they hang out?",
								Required:    true,
							},
						},
					},
				},
			},
			{
				ID:          "competition",
				Title:       "Competitive Landscape",
				Description: "Who else is in your lane?",
				Fields: []models.StageField{
					{
						ID:          "similar_artists",
						Label:       "Similar Artists",
						Type:        models.FieldTypeMultiselect,
						AllowCustom: true,
						Placeholder: "Type artists...",
						Required:    true,
					},
					{
						ID:          "differentiation",
						Label:       `Your "X-Factor"`,
						Type:        models.FieldTypeTextarea,
						Placeholder: "What makes you different from the names above?",
						Required:    true,
						AIEnabled:   true,
					},
				},
			},
		},
	},
	{
		ID:          "stage-3",
		Title:       "Visual Universe",
		Description: "The look and feel of your brand.",
		Icon:        "Eye",
		Steps: []models.StageStep{
			{
				ID:          "color_palette",
				Title:       "Color & Aesthetics",
				Description: "Define your visual DNA.",
				Fields: []models.StageField{
					{
						ID:          "primary_colors",
						Label:       "Primary Colors",
						Type:        models.FieldTypeTextarea,
						Placeholder: `Hex codes or descriptive names (e.g. "Electric Blue, Matte Black")`,
						Required:    true,
					},
					{
						ID:          "aesthetic_style",
						Label:       "Aesthetic Style",
						Type:        models.FieldTypeSelect,
						AllowCustom: true,
						Options:     []string{"Cyberpunk", "Y2K", "Grunge", "Minimalist", "Baroque", "Street Luxury", "Ethereal", "Industrial", "Retro-Futurism"},
						Placeholder: "Select a visual style...",
						Required:    true,
					},
					{
						ID:          "fashion_notes",
						Label:       "Fashion & Styling",
						Type:        models.FieldTypeTextarea,
						Placeholder: "Clothing brands, silhouettes, accessories...",
						AIEnabled:   true,
					},
				},
			},
			{
				ID:          "visual_content",
				Title:       "Imagery & Typography",
				Description: "Fonts and photo styles.",
				Fields: []models.StageField{
					{
						ID:          "typography",
						Label:       "Typography Preferences",
						Type:        models.FieldTypeMultiselect,
						AllowCustom: true,
						Options:     []string{"Serif (Classic)", "Sans Serif (Modern)", "Script (Elegant)", "Display (Bold)", "Monospace (Tech)", "Handwritten (Personal)"},
						Placeholder: "Select font styles...",
					},
					{
						ID:          "imagery_themes",
						Label:       "Imagery Themes",
						Type:        models.FieldTypeMultiselect,
						AllowCustom: true,
						Options:     []string{"Film Grain", "High Flash", "Studio Portraits", "Candid/Raw", "Abstract/3D", "Nature/Organic", "Urban/Concrete"},
						Placeholder: "Select imagery themes...",
						Required:    true,
					},
				},
			},
		},
	},
	{
		ID:          "stage-4",
		Title:       "The Era Definition",
		Description: "Contextualize your current artistic chapter.",
		Icon:        "Clock",
		Steps: []models.StageStep{
			{
				ID:          "era_concept",
				Title:       "Era Concept",
				Description: "What is this chapter called?",
				Fields: []models.StageField{
					{
						ID:          "era_title",
						Label:       "Era Title",
						Type:        models.FieldTypeText,
						Placeholder: `e.g. "The Red Era" or "The Rebirth"`,
						Required:    true,
					},
					{
						ID:          "era_narrative",
						Label:       "Story Arc",
						Type:        models.FieldTypeTextarea,
						Placeholder: "Beginning, Middle, and End of this era's story...",
						Required:    true,
						AIEnabled:   true,
					},
					{
						ID:          "era_dates",
						Label:       "Era Timeline",
						Type:        models.FieldTypeDateRange,
						Placeholder: "When does this era run?",
					},
				},
			},
			{
				ID:          "era_world",
				Title:       "World Building",
				Description: "Where does this era live?",
				Fields: []models.StageField{
					{
						ID:          "setting_description",
						Label:       "The World Setting",
						Type:        models.FieldTypeTextarea,
						Placeholder: "Is it a digital void? A lush garden? A dystopian city?",
						Required:    true,
						AIEnabled:   true,
					},
					{
						ID:          "characters",
						Label:       "Key Characters/Alter Egos",
						Type:        models.FieldTypeTextarea,
						Placeholder: "Are you playing a character? Who else is involved?",
					},
				},
			},
		},
	},
	{
		ID:          "stage-5",
		Title:       "Campaign Architecture",
		Description: "Plan your major marketing moves.",
		Icon:        "Flag",
		Steps: []models.StageStep{
			{
				ID:          "campaigns",
				Title:       "Major Campaigns",
				Description: "Define the big beats of this era.",
				Fields: []models.StageField{
					{
						ID:        "campaign_list",
						Label:     "Campaigns",
						Type:      models.FieldTypeArray,
						MaxItems:  4,
						ItemLabel: "Campaign",
						Fields: []models.StageField{
							{
								ID:          "name",
								Label:       "Campaign Name",
								Type:        models.FieldTypeText,
								Placeholder: `e.g. "Lead Single Rollout"`,
								Required:    true,
							},
							{
								ID:       "goal",
								Label:    "Primary Goal",
								Type:     models.FieldTypeSelect,
								Options:  []string{"Awareness (Reach)", "Engagement (Community)", "Conversion (Sales/Streams)", "Retention (Loyalty)"},
								Required: true,
							},
							{
								ID:          "target_audience",
								Label:       "Target Audience",
								Type:        models.FieldTypeMultiselect,
								Source:      "stage-2.audience_personas",
								Placeholder: "Select personas from Stage 2...",
								AllowCustom: true,
							},
							{
								ID:          "dates",
								Label:       "Campaign Dates",
								Type:        models.FieldTypeDateRange,
								Placeholder: "Select range",
								Required:    true,
							},
							{
								ID:          "purpose",
								Label:       "Strategic Purpose",
								Type:        models.FieldTypeTextarea,
								Placeholder: `Why are we doing this? e.g. "To build hype before the album drop..."`,
								Required:    true,
							},
							{
								ID:          "effectiveness",
								Label:       "Effectiveness Strategy",
								Type:        models.FieldTypeTextarea,
								Placeholder: `How will this be effective? e.g. "Using high-contrast visuals to stop the scroll..."`,
								Required:    true,
							},
							{
								ID:          "phases",
								Label:       "Phases",
								Type:        models.FieldTypeTextarea,
								Placeholder: "1. Tease, 2. Launch, 3. Sustain...",
								Required:    true,
								AIEnabled:   true,
							},
						},
					},
				},
			},
			{
				ID:          "budget_kpi",
				Title:       "Resources & Goals",
				Description: "What are we spending and what are we measuring?",
				Fields: []models.StageField{
					{
						ID:       "budget_allocation",
						Label:    "Budget Focus",
						Type:     models.FieldTypeSelect,
						Options:  []string{"Content Production Heavy", "Ad Spend Heavy", "PR/Playlist Heavy", "Influencer Marketing Heavy", "Balanced"},
						Required: true,
					},
					{
						ID:          "kpis",
						Label:       "Key Performance Indicators (KPIs)",
						Type:        models.FieldTypeMultiselect,
						Options:     []string{"Spotify Monthly Listeners", "Instagram Followers", "TikTok Views", "Email Subscribers", "Merch Sales", "Ticket Sales"},
						Placeholder: "What metrics matter most?",
						Required:    true,
					},
				},
			},
		},
	},
	{
		ID:          "stage-6",
		Title:       "Content Pillars & Mix",
		Description: "What are you actually posting?",
		Icon:        "Layout",
		Steps: []models.StageStep{
			{
				ID:          "pillars",
				Title:       "Content Pillars",
				Description: "The main categories of your content.",
				Fields: []models.StageField{
					{
						ID:            "bucket_list",
						Label:         "Content Buckets",
						Type:          models.FieldTypeArray,
						MaxItems:      99,
						ItemLabel:     "Bucket",
						GroupBySource: "stage-5.campaigns",
						Fields: []models.StageField{
							{
								ID:          "name",
								Label:       "Bucket Name",
								Type:        models.FieldTypeText,
								Placeholder: `e.g. "Studio Vlogs", "Music Snippets"`,
								Required:    true,
							},
							{
								ID:          "campaign_assignment",
								Label:       "Assign to Campaign(s)",
								Type:        models.FieldTypeMultiselect,
								Source:      "stage-5.campaigns",
								Placeholder: "Select active campaigns...",
								AllowCustom: true,
							},
							{
								ID:       "formats",
								Label:    "Content Formats",
								Type:     models.FieldTypeMultiselect,
								Options:  []string{"Short-form Video (Reels/TikTok)", "Long-form Video", "Carousel/Photo", "Text/Thread", "Live Stream", "Audio Only"},
								Required: true,
							},
							{
								ID:       "platforms",
								Label:    "Primary Platforms",
								Type:     models.FieldTypeMultiselect,
								Options:  []string{"TikTok", "Instagram", "YouTube", "Twitter/X", "LinkedIn", "Snapchat", "Twitch"},
								Required: true,
							},
							{
								ID:       "frequency",
								Label:    "Posting Frequency",
								Type:     models.FieldTypeSelect,
								Options:  []string{"Daily", "4-5x / Week", "2-3x / Week", "Weekly", "Bi-Weekly", "Monthly"},
								Required: true,
							},
							{
								ID:          "tone",
								Label:       "Tone & Vibe",
								Type:        models.FieldTypeSelect,
								Options:     []string{"Educational", "Entertaining", "Inspirational", "Personal/Vulnerable", "Promotional/Sales", "Abstract/Artistic"},
								AllowCustom: true,
								Required:    true,
							},
							{
								ID:          "ratio",
								Label:       "Target Mix %",
								Type:        models.FieldTypeText,
								Placeholder: "e.g. 40%",
							},
						},
					},
				},
			},
			{
				ID:          "series_ideas",
				Title:       "Recurring Series",
				Description: "Formats you can repeat.",
				Fields: []models.StageField{
					{
						ID:          "series_concepts",
						Label:       "Series Concepts",
						Type:        models.FieldTypeTextarea,
						Placeholder: `e.g. "Sample Flip Fridays" - every Friday I flip a sample...`,
						Required:    true,
						AIEnabled:   true,
					},
					{
						ID:          "value_prop",
						Label:       "Value Proposition",
						Type:        models.FieldTypeTextarea,
						Placeholder: "Why will people come back for this?",
						AIEnabled:   true,
					},
				},
			},
		},
	},
	{
		ID:          "stage-7",
		Title:       "Asset & Format Strategy",
		Description: "How you package your art.",
		Icon:        "Image",
		Steps: []models.StageStep{
			{
				ID:          "production_tiers",
				Title:       "Production Tiers",
				Description: "Balancing quality and quantity.",
				Fields: []models.StageField{
					{
						ID:       "production_balance",
						Label:    "Production Mix Strategy",
						Type:     models.FieldTypeSelect,
						Options:  []string{"80% Lo-Fi / 20% Hi-Fi (Volume Focus)", "50% Lo-Fi / 50% Hi-Fi (Balanced)", "20% Lo-Fi / 80% Hi-Fi (Premium Focus)"},
						Required: true,
					},
					{
						ID:       "hi_fi_types",
						Label:    "Hi-Fi Content Types",
						Type:     models.FieldTypeMultiselect,
						Options:  []string{"Official Music Videos", "High-End Visualizers", "Professional Photoshoots", "Live Performance Sessions", "Documentaries/Mini-Docs", "Cinematic Trailers"},
						Required: true,
					},
					{
						ID:       "lo_fi_types",
						Label:    "Lo-Fi Content Types",
						Type:     models.FieldTypeMultiselect,
						Options:  []string{"BTS / Studio Vlogs", "TikTok/Reels Trends", "Memes & Edits", "Fan Replies / Q&A", "Demos / Works in Progress", "Personal Updates"},
						Required: true,
					},
				},
			},
			{
				ID:          "asset_checklist",
				Title:       "Asset Checklist",
				Description: "Essential items for launch.",
				Fields: []models.StageField{
					{
						ID:       "core_assets",
						Label:    "Core Assets Needed",
						Type:     models.FieldTypeMultiselect,
						Options:  []string{"Cover Art (3000px)", "Spotify Canvas (9:16 Video)", "Artist Bio (Short & Long)", "Press Photos (High Res)", "Logo / Watermark / Font Pack", "Teaser Clips (15s/30s)"},
						Required: true,
					},
					{
						ID:       "format_specs",
						Label:    "Format Specifications",
						Type:     models.FieldTypeMultiselect,
						Options:  []string{"9:16 Vertical (Reels/TikTok)", "16:9 Landscape (YouTube)", "1:1 Square (Feed/Profile)", "4:5 Portrait (IG Feed)"},
						Required: true,
					},
				},
			},
			{
				ID:          "creative_team",
				Title:       "Creative Tools & Team",
				Description: "Resources to execute.",
				Fields: []models.StageField{
					{
						ID:       "editing_tools",
						Label:    "Creation Tools to Use",
						Type:     models.FieldTypeMultiselect,
						Options:  []string{"CapCut (Mobile)", "Premiere Pro / Final Cut", "Canva (Design)", "Photoshop / Lightroom", "DaVinci Resolve", "Logic/Ableton (Audio)"},
						Required: true,
					},
					{
						ID:       "team_needs",
						Label:    "Team Requirements",
						Type:     models.FieldTypeMultiselect,
						Options:  []string{"DIY (Solo)", "Videographer", "Graphic Designer", "Video Editor", "Stylist / MUA", "Creative Director"},
						Required: true,
					},
				},
			},
		},
	},
	{
		ID:          "stage-8",
		Title:       "Distribution & Growth",
		Description: "Getting eyes and ears on the work.",
		Icon:        "Share2",
		Steps: []models.StageStep{
			{
				ID:          "channels",
				Title:       "Channel Strategy",
				Description: "Where do you win?",
				Fields: []models.StageField{
					{
						ID:       "primary_platform",
						Label:    "Primary Platform (The Hub)",
						Type:     models.FieldTypeSelect,
						Options:  []string{"Instagram", "TikTok", "YouTube", "Spotify", "Twitter/X"},
						Required: true,
					},
					{
						ID:       "secondary_platforms",
						Label:    "Secondary Platforms (Amplifiers)",
						Type:     models.FieldTypeMultiselect,
						Options:  []string{"Instagram", "TikTok", "YouTube Shorts", "Snapchat", "Facebook", "LinkedIn", "Threads"},
						Required: true,
					},
					{
						ID:       "growth_tools",
						Label:    "Growth Accelerators",
						Type:     models.FieldTypeMultiselect,
						Options:  []string{"Paid Ads (Meta/TikTok)", "Influencer Campaigns", "Playlist Pitching (Editorial/User)", "Collabs / Features", "Remix Competitions", "Street Team / Guerrilla Marketing"},
						Required: true,
					},
				},
			},
			{
				ID:          "community",
				Title:       "Community Funnel",
				Description: "Turning listeners into fans.",
				Fields: []models.StageField{
					{
						ID:       "funnel_steps",
						Label:    "Conversion Funnel Points",
						Type:     models.FieldTypeMultiselect,
						Options:  []string{"Direct to DSP (Linkfire)", "Email List / SMS Signup", "Discord / Telegram Community", "Patreon / Membership", "Merch Store Direct", "Website / Blog"},
						Required: true,
					},
					{
						ID:       "fan_activation",
						Label:    "Fan Activation Tactics",
						Type:     models.FieldTypeMultiselect,
						Options:  []string{"Live Q&As / AMAs", "Listening Parties", "UGC Challenges (Use Sound)", "Exclusive Presale Access", "Meet & Greets", "Digital Collectibles / POAPs"},
						Required: true,
					},
				},
			},
		},
	},
	{
		ID:          "stage-9",
		Title:       "Cadence & Consistency",
		Description: "The heartbeat of your plan.",
		Icon:        "BarChart3",
		Steps: []models.StageStep{
			{
				ID:          "schedule_overview",
				Title:       "Weekly Core Schedule",
				Description: "Build your weekly routine.",
				Fields: []models.StageField{
					{
						ID:        "frequency_tier",
						Label:     "Overall Intensity",
						Type:      models.FieldTypeSelect,
						Options:   []string{"Maintenance (1-2x/week)", "Growth (3-4x/week)", "Sprint (Daily)", "Viral (2-3x/day)"},
						Required:  true,
						FullWidth: true,
					},
					{
						ID:          "weekly_plan",
						Label:       "Standard Week Plan",
						Type:        models.FieldTypeWeeklySchedule,
						Required:    true,
						Description: "Assign Campaigns and Content Buckets to specific days.",
					},
				},
			},
			{
				ID:          "sustainability",
				Title:       "Long-Term Sustainability",
				Description: "Avoiding burnout.",
				Fields: []models.StageField{
					{
						ID:       "burnout_prevention",
						Label:    "Burnout Safeguards",
						Type:     models.FieldTypeMultiselect,
						Options:  []string{"Buffer Weeks (Pre-scheduled breaks)", "Repurposing Strategy (Recycle hits)", "Content Bank (Evergreen backlog)", "Delegation (Hiring help)", "Digital Detox Days"},
						Required: true,
					},
					{
						ID:       "content_batching",
						Label:    "Production Workflow",
						Type:     models.FieldTypeSelect,
						Options:  []string{"Daily Creation", "Weekly Batching", "Monthly Batching", "Outsourced"},
						Required: true,
					},
				},
			},
		},
	},
	{
		ID:          "stage-10",
		Title:       "Launch & Optimization",
		Description: "How to actually get it done.",
		Icon:        "Zap",
		Steps: []models.StageStep{
			{
				ID:          "release_admin",
				Title:       "Release Administration",
				Description: "Technical setup and housekeeping.",
				Fields: []models.StageField{
					{
						ID:        "distro_metadata",
						Label:     "Distribution & Metadata",
						Type:      models.FieldTypeMultiselect,
						Options:   []string{"Audio Uploaded to Distributor", "ISRC Codes Generated", "Lyrics Submitted", "Splits / Royalty Sheets Signed", "Release Date Locked", "Copyright Registered"},
						Required:  true,
						FullWidth: true,
					},
					{
						ID:        "dsp_prep",
						Label:     "DSP Preparedness",
						Type:      models.FieldTypeMultiselect,
						Options:   []string{"Spotify Artist Pick Updated", "Spotify Canvas (8s Video) Uploaded", "Apple Music Motion Art (optional)", "Updated Bio on All Platforms", "New Press Photos Uploaded", "Social Links Verified"},
						Required:  true,
						FullWidth: true,
					},
					{
						ID:          "smart_links",
						Label:       "Smart Links & Pre-Saves",
						Type:        models.FieldTypeText,
						Placeholder: "Paste your Linkfire / Pre-save URL here...",
						Required:    true,
						FullWidth:   true,
					},
				},
			},
			{
				ID:          "launch_protocol",
				Title:       "The Launch Day Protocol",
				Description: "Execute the drop with precision.",
				Fields: []models.StageField{
					{
						ID:        "run_of_show",
						Label:     "Launch Day Run of Show",
						Type:      models.FieldTypeArray,
						MaxItems:  20,
						ItemLabel: "Action Item",
						Fields: []models.StageField{
							{
								ID:          "time",
								Label:       "Time",
								Type:        models.FieldTypeText,
								Placeholder: "e.g. 9:00 AM",
								Required:    true,
							},
							{
								ID:          "action",
								Label:       "Action",
								Type:        models.FieldTypeText,
								Placeholder: `e.g. Post "Out Now" Reel`,
								Required:    true,
							},
							{
								ID:       "platform",
								Label:    "Platform",
								Type:     models.FieldTypeSelect,
								Options:  []string{"Instagram", "TikTok", "Twitter/X", "YouTube", "Email/SMS", "Discord"},
								Required: true,
							},
						},
					},
					{
						ID:          "announcement_copy",
						Label:       "The Announcement",
						Type:        models.FieldTypeTextarea,
						Placeholder: `Draft your main "Out Now" caption. Tell the story one last time.`,
						Required:    true,
						AIEnabled:   true,
					},
				},
			},
			{
				ID:          "post_launch",
				Title:       "Momentum & Optimization",
				Description: "Keep the energy alive.",
				Fields: []models.StageField{
					{
						ID:       "sustainability_actions",
						Label:    "Post-Launch Actions",
						Type:     models.FieldTypeMultiselect,
						Options:  []string{"Repost Fan Stories", "Reply to All DMs/Comments", `Send "Thank You" Email to Superfans`, "Update Website Homepage", "Submit to Third-Party Playlists"},
						Required: true,
					},
					{
						ID:       "content_waterfall",
						Label:    "Content Waterfall",
						Type:     models.FieldTypeMultiselect,
						Options:  []string{"Lyric Video", "Visualizer", "Acoustic Version", "Remix Pack", "Behind the Scenes Doc", "Merch Drop"},
						Required: true,
					},
					{
						ID:          "pivot_scenarios",
						Label:       "Pivot Scenarios",
						Type:        models.FieldTypeTextarea,
						Placeholder: "If the song goes viral on TikTok, what do we do? If it flops, what is the backup plan?",
						AIEnabled:   true,
					},
					{
						ID:       "review_cycle",
						Label:    "Review Rhythm",
						Type:     models.FieldTypeSelect,
						Options:  []string{"Daily Stats Check (First Week)", "Weekly Strategy Review", "Monthly Deep Dive", "Quarterly Pivot"},
						Required: true,
					},
				},
			},
		},
	},
}
