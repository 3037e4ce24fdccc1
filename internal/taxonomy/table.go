package taxonomy

import "agri-marketplace/internal/models"

var defaultAreas = []models.FocusArea{
	{ID: "agri-biotech", Title: "Agri Biotech", Icon: "🧬"},
	{ID: "organic-farming", Title: "Organic Farming", Icon: "🌿"},
	{ID: "precision-agriculture", Title: "Precision Agriculture", Icon: "🛰️"},
	{ID: "farm-machinery", Title: "Farm Machinery", Icon: "🚜"},
	{ID: "irrigation", Title: "Irrigation & Water", Icon: "💧"},
	{ID: "seeds", Title: "Seeds & Planting Material", Icon: "🌱"},
	{ID: "crop-nutrition", Title: "Crop Nutrition & Protection", Icon: "🧪"},
	{ID: "dairy-livestock", Title: "Dairy & Livestock", Icon: "🐄"},
	{ID: "fisheries", Title: "Fisheries & Aquaculture", Icon: "🐟"},
	{ID: "horticulture", Title: "Horticulture", Icon: "🌸"},
	{ID: "food-processing", Title: "Food Processing", Icon: "🏭"},
	{ID: "supply-chain", Title: "Supply Chain & Logistics", Icon: "🚚"},
	{ID: "renewable-energy", Title: "Renewable Energy", Icon: "☀️"},
	{ID: "waste-management", Title: "Waste Management", Icon: "♻️"},
	{ID: "agri-fintech", Title: "Agri Fintech", Icon: "💳"},
	{ID: OtherID, Title: "Any Other", Icon: "➕"},
}

// Order matters: earlier keys win fuzzy matches.
var defaultMappings = []Mapping{
	{Category: "Organic Farming", AreaIDs: []string{"organic-farming"}},
	{Category: "Organic Fertilizers", AreaIDs: []string{"organic-farming", "crop-nutrition"}},
	{Category: "Biofertilizers", AreaIDs: []string{"agri-biotech", "crop-nutrition"}},
	{Category: "Biopesticides", AreaIDs: []string{"agri-biotech", "crop-nutrition"}},
	{Category: "Tissue Culture", AreaIDs: []string{"agri-biotech", "seeds"}},
	{Category: "Hybrid Seeds", AreaIDs: []string{"seeds", "agri-biotech"}},
	{Category: "Seeds", AreaIDs: []string{"seeds"}},
	{Category: "Fertilizers", AreaIDs: []string{"crop-nutrition"}},
	{Category: "Pesticides", AreaIDs: []string{"crop-nutrition"}},
	{Category: "Drip Irrigation", AreaIDs: []string{"irrigation", "precision-agriculture"}},
	{Category: "Irrigation", AreaIDs: []string{"irrigation"}},
	{Category: "Solar Pumps", AreaIDs: []string{"renewable-energy", "irrigation"}},
	{Category: "Drones", AreaIDs: []string{"precision-agriculture", "farm-machinery"}},
	{Category: "Soil Sensors", AreaIDs: []string{"precision-agriculture"}},
	{Category: "Farm Management Software", AreaIDs: []string{"precision-agriculture"}},
	{Category: "Tractors", AreaIDs: []string{"farm-machinery"}},
	{Category: "Farm Equipment", AreaIDs: []string{"farm-machinery"}},
	{Category: "Dairy", AreaIDs: []string{"dairy-livestock"}},
	{Category: "Poultry", AreaIDs: []string{"dairy-livestock"}},
	{Category: "Animal Feed", AreaIDs: []string{"dairy-livestock"}},
	{Category: "Veterinary", AreaIDs: []string{"dairy-livestock"}},
	{Category: "Aquaculture", AreaIDs: []string{"fisheries"}},
	{Category: "Fish Feed", AreaIDs: []string{"fisheries", "dairy-livestock"}},
	{Category: "Floriculture", AreaIDs: []string{"horticulture"}},
	{Category: "Fruits & Vegetables", AreaIDs: []string{"horticulture"}},
	{Category: "Spices", AreaIDs: []string{"horticulture", "food-processing"}},
	{Category: "Food Processing", AreaIDs: []string{"food-processing"}},
	{Category: "Packaged Food", AreaIDs: []string{"food-processing"}},
	{Category: "Cold Storage", AreaIDs: []string{"supply-chain"}},
	{Category: "Warehousing", AreaIDs: []string{"supply-chain"}},
	{Category: "Logistics", AreaIDs: []string{"supply-chain"}},
	{Category: "Biogas", AreaIDs: []string{"renewable-energy", "waste-management"}},
	{Category: "Compost", AreaIDs: []string{"waste-management", "organic-farming"}},
	{Category: "Crop Residue", AreaIDs: []string{"waste-management"}},
	{Category: "Crop Insurance", AreaIDs: []string{"agri-fintech"}},
	{Category: "Farm Credit", AreaIDs: []string{"agri-fintech"}},
}

// Exact raw strings whose primary focus area is shown with a specific icon.
var defaultIconOverrides = map[string]string{
	"Drones":       "🚁",
	"Poultry":      "🐔",
	"Dairy":        "🥛",
	"Solar Pumps":  "🔆",
	"Tractors":     "🚜",
	"Aquaculture":  "🦐",
	"Floriculture": "💐",
	"Spices":       "🌶️",
}

// Default is the built-in marketplace taxonomy.
var Default = MustNew(defaultAreas, defaultMappings, defaultIconOverrides)
