package chatbot

// systemPrompt grounds the model in the calculator's inputs and formulas.
const systemPrompt = `ROI Calculator input categories and default values:

BUSINESS INPUTS:
- annual_revenue: $100,000,000 (annual company revenue)
- gross_margin: 80% (gross profit margin)
- container_app_fraction: 90% (share of applications that are containerized)
- annual_cloud_spend: $10,000,000 (total annual cloud infrastructure spend)
- compute_spend_fraction: 60% (share of cloud spend on compute)
- cost_sensitive_fraction: 50% (share of compute spend that is cost-sensitive)

PRODUCTIVITY INPUTS:
- num_engineers: 100 (engineers on the team)
- engineer_cost_per_year: $150,000 (fully loaded annual cost per engineer)
- ops_time_fraction: 15% (engineering time spent on operations)
- ops_toil_fraction: 50% (ops time spent on repetitive toil)
- toil_reduction_fraction: 45% (expected toil reduction through automation, fixed)

PERFORMANCE INPUTS:
- avg_response_time_sec: 2 seconds (current average response time)
- exec_time_influence_fraction: 33% (revenue influenced by execution time, fixed)
- lat_red_container: 28% (latency reduction for containerized apps, fixed)
- lat_red_serverless: 50% (latency reduction for serverless apps, fixed)
- revenue_lift_per_100ms: 1% (revenue increase per 100ms response time improvement)

AVAILABILITY INPUTS:
- current_fci_fraction: 2% (current failure cost index as a share of revenue)
- fci_reduction_fraction: 75% (expected reduction in failure costs, fixed)
- cost_per_1pct_fci: 1% (cost per 1% of FCI)

CALCULATION FORMULAS:

1. Cloud savings:
   computeSpend = annual_cloud_spend * (compute_spend_fraction / 100)
   costSensitiveSpend = computeSpend * (cost_sensitive_fraction / 100)
   cloudSavings = costSensitiveSpend * ((container_app_fraction / 100) * 0.5 + (1 - container_app_fraction / 100) * 0.2)

2. Productivity gain:
   productivityGain = num_engineers * engineer_cost_per_year * (ops_time_fraction / 100) * (ops_toil_fraction / 100) * (toil_reduction_fraction / 100)

3. Performance gain:
   weightedLatRed = (container_app_fraction / 100) * (lat_red_container / 100) + (1 - container_app_fraction / 100) * (lat_red_serverless / 100)
   timeSavedSec = avg_response_time_sec * weightedLatRed
   revGainPct = (timeSavedSec / 0.1) * (revenue_lift_per_100ms / 100)
   performanceGain = annual_revenue * revGainPct * (gross_margin / 100) * (exec_time_influence_fraction / 100)

4. Availability gain:
   fciCostFraction = (cost_per_1pct_fci / 100) * (current_fci_fraction / 100 / 0.01)
   fciCost = annual_revenue * fciCostFraction * (gross_margin / 100)
   availabilityGain = fciCost * (fci_reduction_fraction / 100)

5. Totals:
   totalAnnualGain = cloudSavings + productivityGain + performanceGain + availabilityGain
   estimatedCost = max(annual_cloud_spend * 0.1, num_engineers * engineer_cost_per_year * 0.05, annual_revenue * 0.005)
   roiPercent = totalAnnualGain / estimatedCost * 100
   paybackMonths = 12 * estimatedCost / totalAnnualGain

The calculator estimates ROI from potential savings and gains across cloud infrastructure optimization, engineering productivity, application performance and system availability.`

// BuildPrompt joins the system prompt and the user's question.
func BuildPrompt(message string) string {
	return systemPrompt + "\n\nUser question: " + message
}
