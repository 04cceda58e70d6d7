package catalog

// SeedDefaultServices loads the standard treatment menu a fresh deployment
// starts with. Idempotent by service id.
func (c *Catalog) SeedDefaultServices() {
	defaults := []Service{
		{ID: "svc-womens-haircut", Name: "Women's Haircut", Description: "Precision cut and style", DurationMinutes: 60, Price: 75, Category: "Cut", Active: true},
		{ID: "svc-mens-haircut", Name: "Men's Haircut", Description: "Classic or modern cut", DurationMinutes: 45, Price: 45, Category: "Cut", Active: true},
		{ID: "svc-hair-color", Name: "Hair Color", Description: "Full color application", DurationMinutes: 120, Price: 150, Category: "Color", Active: true},
		{ID: "svc-balayage", Name: "Balayage", Description: "Hand-painted highlights", DurationMinutes: 180, Price: 250, Category: "Color", Active: true},
		{ID: "svc-blowout", Name: "Blowout", Description: "Professional styling", DurationMinutes: 45, Price: 50, Category: "Styling", Active: true},
		{ID: "svc-extensions", Name: "Hair Extensions", Description: "Premium extension application", DurationMinutes: 240, Price: 400, Category: "Extensions", Active: true},
		{ID: "svc-deep-conditioning", Name: "Deep Conditioning Treatment", Description: "Intensive hair treatment", DurationMinutes: 30, Price: 40, Category: "Treatment", Active: true},
		{ID: "svc-keratin", Name: "Keratin Treatment", Description: "Smoothing treatment", DurationMinutes: 180, Price: 300, Category: "Treatment", Active: true},
	}
	for _, s := range defaults {
		c.AddService(s)
	}
}
