package catalog

import "github.com/gatemesh/storefront/internal/domain"

// SeedProducts returns the GateMesh hardware line. Prices are in cents.
func SeedProducts() []domain.Product {
	return []domain.Product{
		{
			ID:          "water-level-sensor",
			Name:        "Water Level Sensor",
			Slug:        "water-level-sensor",
			Description: "Real-time water level monitoring with solar power and mesh networking",
			Price:       17900,
			Category:    domain.CategoryIrrigation,
			Specs: map[string]string{
				"hardware":    "Heltec V4 HIGH (28dBm)",
				"enclosure":   "RAK Unify Large + Solar",
				"sensor":      "JSN-SR04T Ultrasonic (4.5m range)",
				"battery":     "3000mAh LiPo + Solar",
				"range":       "5-15km",
				"batteryLife": "3-5 years",
				"rating":      "IP67",
			},
			Features: []string{
				"Real-time water level monitoring",
				"Temperature sensing",
				"Solar powered with 3-5 year battery life",
				"LoRa mesh networking (5-15km range)",
				"Remote alerts and notifications",
				"IP67 weatherproof rating",
			},
			Images:   []string{"/products/water-level-sensor.jpg"},
			InStock:  true,
			Featured: true,
		},
		{
			ID:          "soil-moisture-sensor",
			Name:        "Soil Moisture Sensor",
			Slug:        "soil-moisture-sensor",
			Description: "Precision soil monitoring for optimal irrigation management",
			Price:       16900,
			Category:    domain.CategoryCropMonitoring,
			Specs: map[string]string{
				"hardware":    "Heltec V4 LOW (22dBm)",
				"enclosure":   "RAK Unify Small + Solar + Antenna",
				"sensor":      "Capacitive (corrosion resistant)",
				"battery":     "1500mAh LiPo + Solar",
				"range":       "3-10km",
				"batteryLife": "3-5 years",
				"rating":      "IP65",
			},
			Features: []string{
				"Capacitive soil moisture measurement",
				"Temperature and humidity tracking",
				"Solar powered operation",
				"Mesh networking capability",
				"Automated irrigation triggers",
				"Historical data tracking",
			},
			Images:   []string{"/products/soil-moisture-sensor.jpg"},
			InStock:  true,
			Featured: true,
		},
		{
			ID:          "livestock-tracker",
			Name:        "Livestock Tracker",
			Slug:        "livestock-tracker",
			Description: "GPS-enabled livestock tracking with health monitoring",
			Price:       24900,
			Category:    domain.CategoryLivestock,
			Specs: map[string]string{
				"hardware":    "Heltec V4 HIGH + GPS",
				"enclosure":   "RAK Unify Small + Solar (Ruggedized)",
				"gps":         "NEO-M8N U-blox",
				"battery":     "2500mAh LiPo + Solar",
				"range":       "10-20km",
				"batteryLife": "2-4 years with solar",
				"rating":      "IP68",
			},
			Features: []string{
				"Real-time GPS location tracking",
				"Motion and activity monitoring",
				"Geofencing with alerts",
				"Solar-powered with extended battery",
				"Durable collar mounting",
				"Health monitoring insights",
			},
			Images:   []string{"/products/livestock-tracker.jpg"},
			InStock:  true,
			Featured: true,
		},
		{
			ID:          "headgate-controller",
			Name:        "Headgate Controller (Controller Only)",
			Slug:        "headgate-controller",
			Description: "Advanced irrigation gate control with remote operation",
			Price:       32900,
			Category:    domain.CategoryIrrigation,
			Specs: map[string]string{
				"hardware":    "Heltec V4 HIGH (28dBm)",
				"enclosure":   "RAK Unify Large + Solar + M8",
				"relays":      "30A dual-channel",
				"battery":     "3500mAh LiPo + Solar",
				"range":       "10-20km",
				"batteryLife": "3-5 years",
				"rating":      "IP67",
			},
			Features: []string{
				"Remote gate operation",
				"Current monitoring",
				"Solar powered",
				"Scheduled automation",
				"Safety timeout protection",
				"Works with your existing actuator",
			},
			Images:  []string{"/products/headgate-controller.jpg"},
			InStock: true,
		},
		{
			ID:          "headgate-complete-system",
			Name:        "Headgate Controller (Complete System)",
			Slug:        "headgate-complete-system",
			Description: "Complete headgate solution with Firgelli feedback actuator",
			Price:       54900,
			Category:    domain.CategoryIrrigation,
			Specs: map[string]string{
				"hardware":    "Heltec V4 HIGH + Controller",
				"actuator":    `Firgelli 12" 150lb w/ position feedback`,
				"enclosure":   "RAK Unify Large + Solar",
				"battery":     "3500mAh LiPo + Solar",
				"range":       "10-20km",
				"batteryLife": "3-5 years",
				"rating":      "IP67",
			},
			Features: []string{
				"Firgelli linear actuator included",
				"Precise position feedback (0-100%)",
				"Remote operation and scheduling",
				"Current and position monitoring",
				"Solar powered system",
				"Complete plug-and-play solution",
				"Mounting brackets included",
			},
			Images:   []string{"/products/headgate-complete.jpg"},
			InStock:  true,
			Featured: true,
		},
		{
			ID:          "mesh-router",
			Name:        "Mesh Router Node",
			Slug:        "mesh-router",
			Description: "Extend your network coverage across the entire farm",
			Price:       20900,
			Category:    domain.CategoryInfrastructure,
			Specs: map[string]string{
				"hardware":    "Heltec V4 HIGH (28dBm)",
				"enclosure":   "RAK Unify Large + Solar",
				"antenna":     "5dBi high-gain directional",
				"battery":     "3000mAh LiPo + Solar",
				"range":       "10-20km per hop",
				"batteryLife": "3-5 years",
				"rating":      "IP67",
			},
			Features: []string{
				"Extends network range 10-20km",
				"High-power 28dBm transmission",
				"Solar powered for remote placement",
				"Pole mounting hardware included",
				"Mesh network optimization",
				"Unlimited coverage through multiple hops",
			},
			Images:  []string{"/products/mesh-router.jpg"},
			InStock: true,
		},
	}
}

// seedCategories describes the storefront groupings. Counts are filled in
// from the product set at construction time.
func seedCategories() []domain.Category {
	return []domain.Category{
		{ID: domain.CategoryIrrigation, Name: "Irrigation Control", Description: "Water level sensors, gate controllers, and flow management"},
		{ID: domain.CategoryCropMonitoring, Name: "Crop Monitoring", Description: "Soil moisture, weather stations, and crop health sensors"},
		{ID: domain.CategoryLivestock, Name: "Livestock Tracking", Description: "GPS trackers, health monitors, and behavior sensors"},
		{ID: domain.CategoryInfrastructure, Name: "Network Infrastructure", Description: "Mesh routers, repeaters, and coverage extenders"},
		{ID: domain.CategoryWeather, Name: "Weather Monitoring", Description: "Weather stations, rain gauges, and environmental sensors"},
		{ID: domain.CategoryPower, Name: "Power & Energy", Description: "Solar panels, battery monitors, and power management"},
	}
}

// FindTier returns the subscription tier with the given id.
func FindTier(id string) (*domain.SubscriptionTier, bool) {
	for _, tier := range SubscriptionTiers() {
		if tier.ID == id {
			return &tier, true
		}
	}
	return nil, false
}

// SubscriptionTiers returns the monitoring-plan pricing tiers.
func SubscriptionTiers() []domain.SubscriptionTier {
	return []domain.SubscriptionTier{
		{
			ID:       "community",
			Name:     "Community",
			Price:    0,
			Interval: "month",
			Features: []string{
				"Access to documentation & guides",
				"Community forum access",
				"Email support (48-72hr response)",
				"Software updates",
				"Demo mode access to config app",
			},
		},
		{
			ID:          "professional",
			Name:        "Professional",
			Price:       3900,
			AnnualPrice: 39000,
			Interval:    "month",
			Features: []string{
				"Everything in Community",
				"Priority email support (24hr response)",
				"Phone support (business hours)",
				"Remote troubleshooting",
				"Quarterly system health checks",
				"Advanced analytics dashboard",
				"Covers up to 25 nodes",
			},
			Popular: true,
		},
		{
			ID:          "enterprise",
			Name:        "Enterprise",
			Price:       24900,
			AnnualPrice: 249000,
			Interval:    "month",
			Features: []string{
				"Everything in Professional",
				"24/7 phone support",
				"4-hour response SLA",
				"Dedicated account manager",
				"On-site installation support",
				"Custom integration assistance",
				"Priority feature requests",
				"Unlimited nodes",
				"Custom reporting",
			},
		},
	}
}
