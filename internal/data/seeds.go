package data

// Seed payloads written the first time a collection file is read.
var seeds = map[Collection]string{
	Posts: `[
  {
    "id": 1,
    "title": "5 Signs Your Brakes Need Attention",
    "slug": "5-signs-your-brakes-need-attention",
    "content": "Squealing, grinding, a soft pedal, pulling to one side and a vibrating steering wheel are all signs that your brakes need an inspection.\n\n## Do not wait\n\nBrake problems only get more expensive. Book an inspection as soon as you notice one of these symptoms.",
    "excerpt": "Squealing, grinding, a soft pedal, pulling to one side and a vibrating steering wheel are all signs that your brakes need an inspection.",
    "author": "Admin",
    "category": "Maintenance",
    "tags": ["brakes", "safety"],
    "status": "published",
    "image": "/static/img/blog/brakes.jpg",
    "views": 0,
    "readTime": "1 min read",
    "createdAt": "2024-01-10T09:00:00Z",
    "updatedAt": "2024-01-10T09:00:00Z"
  }
]
`,
	Services: `[
  {
    "id": 1,
    "name": "Engine Diagnostics",
    "description": "Computer diagnostics to find the cause of warning lights and performance problems.",
    "phone": "+1 555 0100",
    "status": "active",
    "icon": "engine",
    "features": ["OBD-II scan", "Detailed report", "Repair estimate"],
    "image": "/static/img/services/diagnostics.jpg",
    "createdAt": "2024-01-01T08:00:00Z",
    "updatedAt": "2024-01-01T08:00:00Z"
  },
  {
    "id": 2,
    "name": "Brake Repair",
    "description": "Pads, discs, calipers and brake fluid service for all makes.",
    "phone": "+1 555 0100",
    "status": "active",
    "icon": "brake",
    "features": ["Free inspection", "OEM parts", "12 month warranty"],
    "image": "/static/img/services/brakes.jpg",
    "createdAt": "2024-01-01T08:00:00Z",
    "updatedAt": "2024-01-01T08:00:00Z"
  },
  {
    "id": 3,
    "name": "Oil Change",
    "description": "Oil and filter change with a multi-point safety check.",
    "phone": "+1 555 0100",
    "status": "active",
    "icon": "oil",
    "features": ["Synthetic oil", "Filter replacement", "Fluid top-up"],
    "image": "/static/img/services/oil.jpg",
    "createdAt": "2024-01-01T08:00:00Z",
    "updatedAt": "2024-01-01T08:00:00Z"
  }
]
`,
	GalleryImages: `[
  {
    "id": 1,
    "title": "Our workshop",
    "description": "Four lifts and a dedicated diagnostics bay.",
    "image": "/static/img/gallery/workshop.jpg",
    "category": "workshop",
    "tags": ["workshop"],
    "date": "2024-01-01",
    "size": "large",
    "createdAt": "2024-01-01T08:00:00Z",
    "updatedAt": "2024-01-01T08:00:00Z"
  }
]
`,
	Slides: `[
  {
    "id": 1,
    "title": "Honest repairs, fair prices",
    "subtitle": "Family-run garage since 1998",
    "image": "/static/img/slider/hero-1.jpg",
    "buttonText": "Our services",
    "buttonLink": "/services",
    "order": 1,
    "status": "active",
    "createdAt": "2024-01-01T08:00:00Z",
    "updatedAt": "2024-01-01T08:00:00Z"
  },
  {
    "id": 2,
    "title": "Book your inspection today",
    "subtitle": "Same-day diagnostics for most vehicles",
    "image": "/static/img/slider/hero-2.jpg",
    "buttonText": "Contact us",
    "buttonLink": "/contact",
    "order": 2,
    "status": "active",
    "createdAt": "2024-01-01T08:00:00Z",
    "updatedAt": "2024-01-01T08:00:00Z"
  }
]
`,
	Categories: `[
  {
    "id": 1,
    "name": "Maintenance",
    "slug": "maintenance",
    "description": "Keeping your car in shape",
    "type": "blog",
    "color": "#2563eb",
    "icon": "wrench",
    "createdAt": "2024-01-01T08:00:00Z",
    "updatedAt": "2024-01-01T08:00:00Z"
  },
  {
    "id": 2,
    "name": "Garage News",
    "slug": "garage-news",
    "description": "What is happening at the garage",
    "type": "news",
    "color": "#16a34a",
    "icon": "megaphone",
    "createdAt": "2024-01-01T08:00:00Z",
    "updatedAt": "2024-01-01T08:00:00Z"
  }
]
`,
	ContactMessages: "[]\n",
	ScheduleSettings: `{
  "enabled": false,
  "interval": "weekly",
  "postsPerRun": 1,
  "lastRun": null,
  "topics": [
    "How often should you change your engine oil",
    "Preparing your car for winter",
    "What your dashboard warning lights mean",
    "When to replace your tyres"
  ]
}
`,
	GeneratorSettings: `{
  "apiKey": "",
  "model": "",
  "language": "English",
  "style": "friendly and practical, written by an experienced mechanic",
  "defaultAuthor": "AI",
  "defaultImage": "/static/img/blog/default.jpg",
  "publish": false
}
`,
}

func seedFor(c Collection) []byte {
	if s, ok := seeds[c]; ok {
		return []byte(s)
	}
	return []byte("[]\n")
}
