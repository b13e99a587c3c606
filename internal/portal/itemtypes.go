package portal

// ItemTypes are the portal item types the type filters choose from.
var ItemTypes = []string{
	"360 VR Experience", "CityEngine Web Scene", "Map Area", "Pro Map", "Web Map", "Web Scene",
	"Feature Collection", "Feature Collection Template", "Feature Service", "Geodata Service",
	"Group Layer", "Image Service", "KML", "KML Collection", "Map Service", "OGCFeatureServer",
	"Oriented Imagery Catalog", "Relational Database Connection", "3DTilesService", "Scene Service",
	"Vector Tile Service", "WFS", "WMS", "WMTS", "Geometry Service", "Geocoding Service",
	"Geoprocessing Service", "Network Analysis Service", "Workflow Manager Service",
	"AppBuilder Extension", "AppBuilder Widget Package", "Code Attachment", "Dashboard",
	"Data Pipeline", "Deep Learning Studio Project", "Esri Classification Schema",
	"Excalibur Imagery Project", "Experience Builder Widget", "Experience Builder Widget Package",
	"Form", "GeoBIM Application", "GeoBIM Project", "Hub Event", "Hub Initiative",
	"Hub Initiative Template", "Hub Page", "Hub Project", "Hub Site Application", "Insights Workbook",
	"Insights Workbook Package", "Insights Model", "Insights Page", "Insights Theme",
	"Insights Data Engineering Workbook", "Insights Data Engineering Model", "Investigation",
	"Knowledge Studio Project", "Mission", "Mobile Application", "Notebook",
	"Notebook Code Snippet Library", "Native Application", "Native Application Installer",
	"Ortho Mapping Project", "Ortho Mapping Template", "Solution", "StoryMap",
	"Web AppBuilder Widget", "Web Experience", "Web Experience Template", "Web Mapping Application",
	"Workforce Project", "Administrative Report", "Apache Parquet", "CAD Drawing", "Color Set",
	"Content Category Set", "CSV", "Document Link", "Earth configuration",
	"Esri Classifier Definition", "Export Package", "File Geodatabase", "GeoJson", "GeoPackage",
	"GML", "Image", "iWork Keynote", "iWork Numbers", "iWork Pages", "Microsoft Excel",
	"Microsoft Powerpoint", "Microsoft Word", "PDF", "Report Template", "Service Definition",
	"Shapefile", "SQLite Geodatabase", "Statistical Data Collection", "StoryMap Theme", "Style",
	"Symbol Set", "Visio Document", "ArcPad Package", "Compact Tile Package", "Explorer Map",
	"Globe Document", "Layout", "Map Document", "Map Package", "Map Template",
	"Mobile Basemap Package", "Mobile Map Package", "Mobile Scene Package", "Project Package",
	"Project Template", "Published Map", "Scene Document", "Task File", "Tile Package",
	"Vector Tile Package", "Explorer Layer", "Image Collection", "Layer", "Layer Package",
	"Pro Report", "Scene Package", "3DTilesPackage", "Desktop Style", "ArcGIS Pro Configuration",
	"Deep Learning Package", "Geoprocessing Package", "Geoprocessing Package (Pro version)",
	"Geoprocessing Sample", "Locator Package", "Raster function template", "Rule Package",
	"Pro Report Template", "ArcGIS Pro Add In", "Code Sample", "Desktop Add In",
	"Desktop Application", "Desktop Application Template", "Explorer Add In", "Survey123 Add In",
	"Workflow Manager Package",
}
