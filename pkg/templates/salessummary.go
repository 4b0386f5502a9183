package templates

import (
	"html/template"

	"github.com/tokamak-network/pages-deployer/pkg/domain/entities"
)

const (
	salesDataFile  = "data.csv"
	salesRatesFile = "rates.json"
)

const sampleSalesCSV = "product,region,sales\nProduct A,North,100\nProduct B,South,150\nProduct C,North,75\n"

const defaultRatesJSON = `{"base":"USD","rates":{"USD":1,"EUR":0.92,"GBP":0.79,"INR":83.1,"JPY":149.5}}
`

type salesVariant string

const (
	salesVariantTotal    salesVariant = "total"
	salesVariantProducts salesVariant = "products"
	salesVariantCurrency salesVariant = "currency"
	salesVariantRegion   salesVariant = "region"
)

type SalesSummary struct{}

func (SalesSummary) Kind() Kind {
	return KindSalesSummary
}

func (s SalesSummary) GenerateRound1(in Input) (entities.FileSet, error) {
	return s.generate(in, nil, salesVariantTotal, 1)
}

func (s SalesSummary) GenerateRound2(in Input, prior entities.FileSet) (entities.FileSet, error) {
	return s.generate(in, prior, salesRound2Variant(in.Brief), 2)
}

// salesRound2Variant picks the revision asked for by the brief; the product
// table is the default revision.
func salesRound2Variant(brief string) salesVariant {
	switch {
	case containsAny(brief, "bootstrap table", "product-sales"):
		return salesVariantProducts
	case containsAny(brief, "currency"):
		return salesVariantCurrency
	case containsAny(brief, "region", "filter"):
		return salesVariantRegion
	}
	return salesVariantProducts
}

func (s SalesSummary) generate(in Input, prior entities.FileSet, variant salesVariant, round int) (entities.FileSet, error) {
	seed := briefSeed(in.Brief, "default")

	page, err := render(salesPage, struct {
		Seed    string
		Variant salesVariant
		CSS     string
		JS      string
	}{Seed: seed, Variant: variant, CSS: bootstrapCSS, JS: bootstrapJS})
	if err != nil {
		return nil, err
	}

	files := entities.FileSet{
		"index.html":  page,
		"script.js":   []byte(csvParserJS + salesScripts[variant]),
		salesDataFile: salesData(in.Attachments, prior),
		"README.md": readme{
			Title:  "Sales Summary " + seed,
			Brief:  in.Brief,
			Round:  round,
			Setup:  []string{"Clone this repository", "Open index.html in a browser", "Bootstrap is loaded from a CDN"},
			Usage:  salesUsage[variant],
			Checks: in.Checks,
		}.Bytes(),
	}

	if variant == salesVariantCurrency {
		rates := []byte(defaultRatesJSON)
		if data, ok := in.Attachments[salesRatesFile]; ok {
			rates = data
		} else if prior.Has(salesRatesFile) {
			rates = prior[salesRatesFile]
		}
		files[salesRatesFile] = rates
	}
	return files, nil
}

// salesData prefers the request attachment byte-for-byte, then the data of
// the previous round, then a sample.
func salesData(attachments map[string][]byte, prior entities.FileSet) []byte {
	if data, ok := attachments[salesDataFile]; ok {
		return data
	}
	if prior.Has(salesDataFile) {
		return prior[salesDataFile]
	}
	return []byte(sampleSalesCSV)
}

var salesUsage = map[salesVariant]string{
	salesVariantTotal:    "The page loads data.csv and displays the total of the sales column in #total-sales.",
	salesVariantProducts: "The page shows the total sales and a per-product breakdown in the #product-sales table.",
	salesVariantCurrency: "The page shows the total sales and converts it with rates.json; pick a currency in #currency-picker.",
	salesVariantRegion:   "The page shows the total sales; choose a region in #region-filter to narrow the total.",
}

var salesPage = template.Must(template.New("sales-index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Sales Summary {{.Seed}}</title>
    <link href="{{.CSS}}" rel="stylesheet">
</head>
<body>
    <div class="container mt-5">
        <h1>Sales Summary {{.Seed}}</h1>
{{- if eq .Variant "region"}}
        <div class="mt-4">
            <label for="region-filter" class="form-label">Region</label>
            <select id="region-filter" class="form-select">
                <option value="">All regions</option>
            </select>
        </div>
{{- end}}
        <div class="card mt-4">
            <div class="card-body">
                <h5 class="card-title">Total Sales</h5>
                <p class="card-text fs-3 text-primary" id="total-sales">Calculating...</p>
            </div>
        </div>
{{- if eq .Variant "currency"}}
        <div class="card mt-4">
            <div class="card-body">
                <h5 class="card-title">Converted Total</h5>
                <select id="currency-picker" class="form-select mb-3"></select>
                <p class="card-text fs-3" id="total-currency">-</p>
            </div>
        </div>
{{- end}}
{{- if eq .Variant "products"}}
        <div class="card mt-4">
            <div class="card-body">
                <h5 class="card-title">Product Sales</h5>
                <table class="table table-striped" id="product-sales">
                    <thead>
                        <tr><th>Product</th><th>Sales</th></tr>
                    </thead>
                    <tbody id="product-sales-body"></tbody>
                </table>
            </div>
        </div>
{{- end}}
    </div>
    <script src="{{.JS}}"></script>
    <script src="script.js" data-source="data.csv"></script>
</body>
</html>
`))

const csvParserJS = `// Minimal CSV reader for data.csv.
function parseCSV(text) {
    const lines = text.trim().split(/\r?\n/).filter(function (line) { return line.trim() !== ''; });
    const header = lines.shift().split(',').map(function (h) { return h.trim().toLowerCase(); });
    return lines.map(function (line) {
        const cells = line.split(',');
        const row = {};
        header.forEach(function (name, i) { row[name] = (cells[i] || '').trim(); });
        row._cells = cells;
        return row;
    });
}

function salesOf(row) {
    const value = row.sales !== undefined ? row.sales : row._cells[1];
    const parsed = parseFloat(value);
    return isNaN(parsed) ? 0 : parsed;
}

async function loadRows() {
    const response = await fetch('data.csv');
    return parseCSV(await response.text());
}

`

var salesScripts = map[salesVariant]string{
	salesVariantTotal: `async function loadSalesData() {
    try {
        const rows = await loadRows();
        const total = rows.reduce(function (sum, row) { return sum + salesOf(row); }, 0);
        document.getElementById('total-sales').textContent = total.toFixed(2);
    } catch (error) {
        console.error('Error loading sales data:', error);
        document.getElementById('total-sales').textContent = 'Error';
    }
}

document.addEventListener('DOMContentLoaded', loadSalesData);
`,
	salesVariantProducts: `async function loadSalesData() {
    try {
        const rows = await loadRows();
        const body = document.getElementById('product-sales-body');
        body.innerHTML = '';
        let total = 0;
        rows.forEach(function (row) {
            const sales = salesOf(row);
            total += sales;
            const tr = document.createElement('tr');
            const product = document.createElement('td');
            product.textContent = row.product !== undefined ? row.product : row._cells[0];
            const amount = document.createElement('td');
            amount.textContent = sales.toFixed(2);
            tr.appendChild(product);
            tr.appendChild(amount);
            body.appendChild(tr);
        });
        document.getElementById('total-sales').textContent = total.toFixed(2);
    } catch (error) {
        console.error('Error loading sales data:', error);
        document.getElementById('total-sales').textContent = 'Error';
    }
}

document.addEventListener('DOMContentLoaded', loadSalesData);
`,
	salesVariantCurrency: `async function loadSalesData() {
    try {
        const rows = await loadRows();
        const total = rows.reduce(function (sum, row) { return sum + salesOf(row); }, 0);
        document.getElementById('total-sales').textContent = total.toFixed(2);

        const ratesResponse = await fetch('rates.json');
        const rates = (await ratesResponse.json()).rates || {};
        const picker = document.getElementById('currency-picker');
        Object.keys(rates).forEach(function (code) {
            const option = document.createElement('option');
            option.value = code;
            option.textContent = code;
            picker.appendChild(option);
        });
        const update = function () {
            const rate = rates[picker.value] || 1;
            document.getElementById('total-currency').textContent = (total * rate).toFixed(2) + ' ' + picker.value;
        };
        picker.addEventListener('change', update);
        update();
    } catch (error) {
        console.error('Error loading sales data:', error);
        document.getElementById('total-sales').textContent = 'Error';
    }
}

document.addEventListener('DOMContentLoaded', loadSalesData);
`,
	salesVariantRegion: `async function loadSalesData() {
    try {
        const rows = await loadRows();
        const filter = document.getElementById('region-filter');
        const regions = Array.from(new Set(rows.map(function (row) { return row.region || ''; }))).filter(Boolean).sort();
        regions.forEach(function (region) {
            const option = document.createElement('option');
            option.value = region;
            option.textContent = region;
            filter.appendChild(option);
        });
        const update = function () {
            const selected = filter.value;
            const total = rows
                .filter(function (row) { return !selected || row.region === selected; })
                .reduce(function (sum, row) { return sum + salesOf(row); }, 0);
            document.getElementById('total-sales').textContent = total.toFixed(2);
        };
        filter.addEventListener('change', update);
        update();
    } catch (error) {
        console.error('Error loading sales data:', error);
        document.getElementById('total-sales').textContent = 'Error';
    }
}

document.addEventListener('DOMContentLoaded', loadSalesData);
`,
}
