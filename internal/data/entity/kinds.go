package entity

// adminCRUD is the access every editable content kind shares.
var adminCRUD = Access{PublicRead: true, AdminCreate: true, AdminUpdate: true, AdminDelete: true}

var (
	Service = newKind(Kind{
		Name:    "services",
		Label:   "service",
		Table:   "services",
		Lookup:  "slug",
		OrderBy: "sort_order",
		Access:  adminCRUD,
		Fields: []Field{
			{Name: "title", Type: FieldString, Required: true, Rules: "max=200"},
			{Name: "slug", Type: FieldString, Required: true, Rules: "max=200,slug"},
			{Name: "shortDescription", Type: FieldText, Rules: "max=500"},
			{Name: "description", Type: FieldText},
			{Name: "icon", Type: FieldString, Rules: "max=100"},
			{Name: "features", Type: FieldStringList, Default: []string{}},
			{Name: "technologies", Type: FieldStringList, Default: []string{}},
			{Name: "imageUrl", Type: FieldString, Rules: "max=2048"},
			{Name: "sortOrder", Type: FieldInteger, Default: int64(0)},
			{Name: "isFeatured", Type: FieldBoolean, Default: false, Filter: "featured"},
			{Name: "isActive", Type: FieldBoolean, Default: true, Filter: "active"},
		},
	})

	TeamMember = newKind(Kind{
		Name:    "team",
		Label:   "team member",
		Table:   "team_members",
		Lookup:  "slug",
		OrderBy: "sort_order",
		Access:  adminCRUD,
		Fields: []Field{
			{Name: "name", Type: FieldString, Required: true, Rules: "max=200"},
			{Name: "slug", Type: FieldString, Required: true, Rules: "max=200,slug"},
			{Name: "role", Type: FieldString, Required: true, Rules: "max=200"},
			{Name: "bio", Type: FieldText},
			{Name: "imageUrl", Type: FieldString, Rules: "max=2048"},
			{Name: "email", Type: FieldString, Rules: "email"},
			{Name: "linkedinUrl", Type: FieldString, Rules: "url"},
			{Name: "githubUrl", Type: FieldString, Rules: "url"},
			{Name: "twitterUrl", Type: FieldString, Rules: "url"},
			{Name: "sortOrder", Type: FieldInteger, Default: int64(0)},
			{Name: "isActive", Type: FieldBoolean, Default: true, Filter: "active"},
		},
	})

	Testimonial = newKind(Kind{
		Name:    "testimonials",
		Label:   "testimonial",
		Table:   "testimonials",
		OrderBy: "sort_order",
		Access:  adminCRUD,
		Fields: []Field{
			{Name: "clientName", Type: FieldString, Required: true, Rules: "max=200"},
			{Name: "clientTitle", Type: FieldString, Rules: "max=200"},
			{Name: "clientCompany", Type: FieldString, Rules: "max=200"},
			{Name: "content", Type: FieldText, Required: true, Rules: "max=5000"},
			{Name: "rating", Type: FieldInteger, Default: int64(5), Rules: "min=1,max=5"},
			{Name: "imageUrl", Type: FieldString, Rules: "max=2048"},
			{Name: "sortOrder", Type: FieldInteger, Default: int64(0)},
			{Name: "isFeatured", Type: FieldBoolean, Default: false, Filter: "featured"},
			{Name: "isActive", Type: FieldBoolean, Default: true, Filter: "active"},
		},
	})

	Client = newKind(Kind{
		Name:    "clients",
		Label:   "client",
		Table:   "clients",
		Lookup:  "slug",
		OrderBy: "sort_order",
		Access:  adminCRUD,
		Fields: []Field{
			{Name: "name", Type: FieldString, Required: true, Rules: "max=200"},
			{Name: "slug", Type: FieldString, Required: true, Rules: "max=200,slug"},
			{Name: "logoUrl", Type: FieldString, Rules: "max=2048"},
			{Name: "websiteUrl", Type: FieldString, Rules: "url"},
			{Name: "industry", Type: FieldString, Rules: "max=200"},
			{Name: "description", Type: FieldText},
			{Name: "sortOrder", Type: FieldInteger, Default: int64(0)},
			{Name: "isFeatured", Type: FieldBoolean, Default: false, Filter: "featured"},
			{Name: "isActive", Type: FieldBoolean, Default: true, Filter: "active"},
		},
	})

	CaseStudy = newKind(Kind{
		Name:    "case-studies",
		Label:   "case study",
		Table:   "case_studies",
		Lookup:  "slug",
		OrderBy: "sort_order",
		Access:  adminCRUD,
		Fields: []Field{
			{Name: "title", Type: FieldString, Required: true, Rules: "max=200"},
			{Name: "slug", Type: FieldString, Required: true, Rules: "max=200,slug"},
			{Name: "clientName", Type: FieldString, Rules: "max=200"},
			{Name: "categoryId", Type: FieldString, Filter: "category"},
			{Name: "industry", Type: FieldString, Rules: "max=200"},
			{Name: "duration", Type: FieldString, Rules: "max=100"},
			{Name: "summary", Type: FieldText, Rules: "max=1000"},
			{Name: "challenge", Type: FieldText},
			{Name: "solution", Type: FieldText},
			{Name: "results", Type: FieldText},
			{Name: "technologies", Type: FieldStringList, Default: []string{}},
			{Name: "imageUrl", Type: FieldString, Rules: "max=2048"},
			{Name: "sortOrder", Type: FieldInteger, Default: int64(0)},
			{Name: "isFeatured", Type: FieldBoolean, Default: false, Filter: "featured"},
			{Name: "isActive", Type: FieldBoolean, Default: true, Filter: "active"},
		},
	})

	Category = newKind(Kind{
		Name:    "categories",
		Label:   "category",
		Table:   "categories",
		Lookup:  "slug",
		OrderBy: "sort_order",
		Access:  adminCRUD,
		Fields: []Field{
			{Name: "name", Type: FieldString, Required: true, Rules: "max=200"},
			{Name: "slug", Type: FieldString, Required: true, Rules: "max=200,slug"},
			{Name: "type", Type: FieldEnum, Required: true, Filter: "type",
				Enum: []string{"service", "technology", "case_study", "industry"}},
			{Name: "description", Type: FieldText},
			{Name: "sortOrder", Type: FieldInteger, Default: int64(0)},
		},
	})

	Technology = newKind(Kind{
		Name:    "technologies",
		Label:   "technology",
		Table:   "technologies",
		Lookup:  "slug",
		OrderBy: "sort_order",
		Access:  adminCRUD,
		Fields: []Field{
			{Name: "name", Type: FieldString, Required: true, Rules: "max=200"},
			{Name: "slug", Type: FieldString, Required: true, Rules: "max=200,slug"},
			{Name: "categoryId", Type: FieldString, Filter: "category"},
			{Name: "iconUrl", Type: FieldString, Rules: "max=2048"},
			{Name: "description", Type: FieldText},
			{Name: "proficiency", Type: FieldInteger, Rules: "min=0,max=100"},
			{Name: "sortOrder", Type: FieldInteger, Default: int64(0)},
			{Name: "isActive", Type: FieldBoolean, Default: true, Filter: "active"},
		},
	})

	SiteSetting = newKind(Kind{
		Name:    "settings",
		Label:   "setting",
		Table:   "site_settings",
		Lookup:  "key",
		OrderBy: "key",
		Access:  adminCRUD,
		Fields: []Field{
			{Name: "key", Type: FieldString, Required: true, Rules: "max=100,setting_key"},
			{Name: "value", Type: FieldText},
			{Name: "description", Type: FieldString, Rules: "max=500"},
		},
	})

	// ContactSubmission is written by the public form and only read or
	// updated through the admin session.
	ContactSubmission = newKind(Kind{
		Name:    "contacts",
		Label:   "contact submission",
		Table:   "contact_submissions",
		OrderBy: "created_at",
		Access:  Access{PublicCreate: true, AdminUpdate: true, AdminDelete: true},
		Fields: []Field{
			{Name: "firstName", Type: FieldString, Required: true, Rules: "max=100"},
			{Name: "lastName", Type: FieldString, Required: true, Rules: "max=100"},
			{Name: "email", Type: FieldString, Required: true, Rules: "email,max=254"},
			{Name: "company", Type: FieldString, Rules: "max=200"},
			{Name: "projectType", Type: FieldString, Rules: "max=100"},
			{Name: "message", Type: FieldText, Required: true, Rules: "max=5000"},
			{Name: "isRead", Type: FieldBoolean, Default: false, Filter: "read", Protected: true},
		},
	})
)

// Kinds lists every registered kind in route order.
var Kinds = []*Kind{
	Service, TeamMember, Testimonial, Client, CaseStudy,
	Category, Technology, SiteSetting, ContactSubmission,
}

var kindsByName = func() map[string]*Kind {
	m := make(map[string]*Kind, len(Kinds))
	for _, k := range Kinds {
		m[k.Name] = k
	}
	return m
}()

// LookupKind resolves a route segment to its kind.
func LookupKind(name string) (*Kind, bool) {
	k, ok := kindsByName[name]
	return k, ok
}
